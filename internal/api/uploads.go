package api

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/MichaelEbbert/ebaysales/internal/assess"
	"github.com/MichaelEbbert/ebaysales/internal/imaging"
	"github.com/MichaelEbbert/ebaysales/internal/model"
	"github.com/MichaelEbbert/ebaysales/internal/uploads"
)

// UploadsHandler handles card scan uploads and condition checks.
type UploadsHandler struct {
	*Deps
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Side     string `json:"side"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type conditionResponse struct {
	uploadResponse
	assess.Result
}

// saveScan reads the "image" form file, crops it and stores the result.
func (h *UploadsHandler) saveScan(r *http.Request) (*uploadResponse, []byte, error) {
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		return nil, nil, &model.ValidationError{Field: "image", Message: "invalid multipart form"}
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, nil, &model.ValidationError{Field: "image", Message: "no image provided"}
	}
	defer file.Close()

	side, err := uploads.ParseSide(r.FormValue("side"))
	if err != nil {
		return nil, nil, &model.ValidationError{Field: "side", Message: err.Error()}
	}
	if _, err := imaging.FormatFromName(header.Filename); err != nil {
		return nil, nil, &model.ValidationError{Field: "image", Message: err.Error()}
	}

	res, err := crop(file)
	if err != nil {
		return nil, nil, err
	}

	name, err := h.Uploads.Save(side, header.Filename, res.Data, h.Now())
	if err != nil {
		return nil, nil, err
	}
	slog.Info("scan uploaded", "file", name, "side", side, "format", res.Format)

	return &uploadResponse{
		Success:  true,
		Filename: name,
		Side:     side,
		Format:   string(res.Format),
		Width:    res.Width,
		Height:   res.Height,
	}, res.Data, nil
}

func crop(file multipart.File) (*imaging.CropResult, error) {
	res, err := imaging.Crop(file)
	if err != nil {
		return nil, &model.ValidationError{Field: "image", Message: err.Error()}
	}
	return res, nil
}

// Upload handles POST /api/uploads.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	resp, _, err := h.saveScan(r)
	if err != nil {
		storeError(w, err, "failed to save upload")
		return
	}
	jsonResponse(w, http.StatusCreated, resp)
}

// ConditionCheck handles POST /api/condition-check. The scan is saved even
// when the assessment fails; failures are reported in the body.
func (h *UploadsHandler) ConditionCheck(w http.ResponseWriter, r *http.Request) {
	up, data, err := h.saveScan(r)
	if err != nil {
		storeError(w, err, "failed to save upload")
		return
	}
	resp := conditionResponse{uploadResponse: *up}

	if !h.Checker.Enabled() {
		resp.Result = h.Checker.Check(r.Context(), assess.Request{})
		jsonResponse(w, http.StatusOK, resp)
		return
	}

	thumb, err := imaging.Thumbnail(data, assess.MaxImageDimension)
	if err != nil {
		resp.Result = assess.Result{Error: "preparing image: " + err.Error()}
		jsonResponse(w, http.StatusOK, resp)
		return
	}

	resp.Result = h.Checker.Check(r.Context(), assess.Request{
		Image:             thumb,
		MediaType:         imaging.FormatJPEG.MIME(),
		Category:          r.FormValue("category"),
		Side:              up.Side,
		SelectedCondition: r.FormValue("condition"),
	})
	jsonResponse(w, http.StatusOK, resp)
}

// Get handles GET /api/uploads/{name}.
func (h *UploadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.Uploads.Read(r.PathValue("name"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "upload not found")
		return
	}
	format, err := imaging.Sniff(data)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "stored upload is not an image")
		return
	}

	w.Header().Set("Content-Type", format.MIME())
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Write(data)
}
