// Package uploads stores cropped card scans on disk under time-ordered
// names.
package uploads

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Card sides.
const (
	SideFront = "front"
	SideBack  = "back"
)

// ParseSide validates an upload side, defaulting to front.
func ParseSide(s string) (string, error) {
	switch s {
	case "", SideFront:
		return SideFront, nil
	case SideBack:
		return SideBack, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Dir is a directory of uploaded images.
type Dir struct {
	path string
}

// Open creates the upload directory if needed.
func Open(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the upload directory.
func (d *Dir) Path() string {
	return d.path
}

// Name builds a stored file name: {ulid}_{side}_{sanitized original}.
func Name(side, original string, now time.Time) string {
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return id.String() + "_" + side + "_" + Sanitize(original)
}

// Sanitize reduces a client file name to a safe base name of ASCII letters,
// digits, dots, dashes and underscores.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), "._")
	if out == "" {
		return "scan"
	}
	return out
}

// resolve maps a stored name to a path inside the directory.
func (d *Dir) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	return filepath.Join(d.path, name), nil
}

// Save writes data under a fresh name and returns the name.
func (d *Dir) Save(side, original string, data []byte, now time.Time) (string, error) {
	name := Name(side, original, now)
	p, err := d.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return name, nil
}

// Read returns the contents of a stored file.
func (d *Dir) Read(name string) ([]byte, error) {
	p, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}

// Remove deletes a stored file. It reports false when the file was already
// gone.
func (d *Dir) Remove(name string) (bool, error) {
	p, err := d.resolve(name)
	if err != nil {
		return false, err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing upload: %w", err)
	}
	return true, nil
}

// Exists reports whether a stored file is present.
func (d *Dir) Exists(name string) bool {
	p, err := d.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// File is a stored upload.
type File struct {
	Name    string
	ModTime time.Time
}

// List returns all regular files in the directory, sorted by name.
func (d *Dir) List() ([]File, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, File{Name: e.Name(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
