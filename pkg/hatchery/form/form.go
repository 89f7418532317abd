// Package form binds and validates the fields of goose requests. Every field
// belongs to one of a closed set of kinds (text, hex color, binary upload),
// each validated by a plain function.
package form

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/tendant/hatchery/pkg/hatchery"
)

// Default limits
const (
	DefaultTextLimit  = 256 << 10
	DefaultImageLimit = 10 << 20
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

// Limits bounds the size of submitted fields
type Limits struct {
	Text  int64
	Image int64
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{Text: DefaultTextLimit, Image: DefaultImageLimit}
}

// Text validates a free-text field. Empty values are accepted.
func Text(field string, raw []byte, limit int64) (string, error) {
	if limit > 0 && int64(len(raw)) > limit {
		return "", &hatchery.ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d bytes", limit)}
	}
	return string(raw), nil
}

// HexColor validates a color tag. An empty value is accepted; otherwise it
// must be '#' followed by 6 hex digits.
func HexColor(field string, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if len(raw) != 7 {
		return "", &hatchery.ValidationError{Field: field, Reason: "must contain exactly 7 characters"}
	}
	if raw[0] != '#' {
		return "", &hatchery.ValidationError{Field: field, Reason: "must start with '#'"}
	}
	for _, c := range raw[1:] {
		if !isHexDigit(c) {
			return "", &hatchery.ValidationError{Field: field, Reason: "all 6 digits must be valid hex"}
		}
	}
	return string(raw), nil
}

// Binary validates an uploaded file and resolves where its bytes live. Files
// the multipart reader spilled to disk are referenced by path; smaller ones
// are read into memory.
func Binary(field string, header *multipart.FileHeader, limit int64) (hatchery.AssetSource, error) {
	if header == nil {
		return nil, &hatchery.ValidationError{Field: field, Reason: "is required"}
	}
	if header.Size == 0 {
		return nil, &hatchery.ValidationError{Field: field, Reason: "must not be empty"}
	}
	if limit > 0 && header.Size > limit {
		return nil, &hatchery.ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d bytes", limit)}
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", field, err)
	}
	defer file.Close()

	if f, ok := file.(*os.File); ok {
		return hatchery.AssetOnDisk{Path: f.Name()}, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return hatchery.AssetInMemory{Data: data}, nil
}

// ParseCreation binds a multipart creation request. The caller must call
// r.MultipartForm.RemoveAll once the request is done, which deletes files
// referenced by an AssetOnDisk.
func ParseCreation(r *http.Request, limits Limits) (hatchery.CreateGooseRequest, error) {
	var req hatchery.CreateGooseRequest

	// Keep small images in memory; larger ones go to disk
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, err
		}
		return req, &hatchery.ValidationError{Field: "form", Reason: "must be valid multipart/form-data"}
	}

	var err error
	if req.Name, err = Text("name", []byte(r.FormValue("name")), limits.Text); err != nil {
		return req, err
	}
	if req.Description, err = Text("description", []byte(r.FormValue("description")), limits.Text); err != nil {
		return req, err
	}
	if req.Color, err = HexColor("color", []byte(r.FormValue("color"))); err != nil {
		return req, err
	}

	var header *multipart.FileHeader
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		header = files[0]
	}
	if req.Image, err = Binary("image", header, limits.Image); err != nil {
		return req, err
	}
	return req, nil
}

// ParseList binds the sort, limit and page query parameters.
func ParseList(r *http.Request) (hatchery.ListParams, error) {
	query := r.URL.Query()
	params := hatchery.ListParams{
		Sort:  hatchery.SortNameAsc,
		Limit: DefaultListLimit,
	}

	if v := query.Get("sort"); v != "" {
		params.Sort = hatchery.SortKey(v)
		if !params.Sort.IsValid() {
			return params, &hatchery.ValidationError{
				Field:  "sort",
				Reason: "must be one of [name asc, name desc, time asc, time desc]",
			}
		}
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxListLimit {
			return params, &hatchery.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxListLimit)}
		}
		params.Limit = limit
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 || page > hatchery.MaxPage(params.Limit) {
			return params, &hatchery.ValidationError{
				Field:  "page",
				Reason: fmt.Sprintf("must be an integer between 0 and %d", hatchery.MaxPage(params.Limit)),
			}
		}
		params.Page = page
	}
	return params, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
