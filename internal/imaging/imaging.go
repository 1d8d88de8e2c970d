// Package imaging crops flatbed scans of sleeved cards to a fixed frame.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Scan geometry. Scans are 600 DPI with the sleeved card flush to the
// top-left corner.
const (
	DPI        = 600
	CardWidth  = 1500 // 2.5in
	CardHeight = 2100 // 3.5in
	Cushion    = 5

	sleeveSideMM   = 3
	sleeveTopMM    = 5
	sleeveBottomMM = 3
)

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 92

// MaxUploadBytes caps the size of an uploaded scan.
const MaxUploadBytes = 16 << 20

func mmToPx(mm float64) int {
	return int(mm * DPI / 25.4)
}

// CropWidth and CropHeight are the frame cut from every scan.
var (
	CropWidth  = mmToPx(sleeveSideMM) + CardWidth + mmToPx(sleeveSideMM) + Cushion
	CropHeight = mmToPx(sleeveTopMM) + CardHeight + mmToPx(sleeveBottomMM) + Cushion
)

// Format is an accepted image encoding.
type Format string

// Accepted formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

// MIME returns the media type of f.
func (f Format) MIME() string {
	return "image/" + string(f)
}

var extensions = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromName returns the format implied by a file name's extension.
func FormatFromName(name string) (Format, error) {
	f, ok := extensions[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q (png, jpg, jpeg, tif, tiff accepted)", filepath.Ext(name))
	}
	return f, nil
}

// Sniff detects the format from the leading bytes.
func Sniff(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF, nil
	}
	return "", fmt.Errorf("unsupported image data")
}

// CropResult contains the cropped image data.
type CropResult struct {
	Data   []byte
	Format Format
	Width  int
	Height int
}

// Crop reads a scan, validates the format by sniffing bytes, cuts the
// fixed card frame from the top-left corner and re-encodes in the source
// format. Scans smaller than the frame are cut to their own bounds.
func Crop(r io.Reader) (*CropResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}

	// Sniff actual format from bytes (not trusting client headers).
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	cropped := cropTopLeft(img, CropWidth, CropHeight)

	var buf bytes.Buffer
	if err := encode(&buf, cropped, format); err != nil {
		return nil, err
	}

	b := cropped.Bounds()
	return &CropResult{
		Data:   buf.Bytes(),
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func cropTopLeft(img image.Image, w, h int) image.Image {
	src := img.Bounds()
	w = min(w, src.Dx())
	h = min(h, src.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(dst, image.Point{}, img, image.Rect(src.Min.X, src.Min.Y, src.Min.X+w, src.Min.Y+h), draw.Src, nil)
	return dst
}

func encode(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return nil
}

// Thumbnail decodes data and returns a JPEG no larger than maxDim on either
// side. Used to keep condition-check payloads small.
func Thumbnail(data []byte, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	// Calculate new dimensions preserving aspect ratio.
	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
