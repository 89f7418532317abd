package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/hatchery/pkg/hatchery"
	"github.com/tendant/hatchery/pkg/hatchery/form"
)

// Messages returned to callers. Causes are only logged.
const (
	msgTryAgain     = "Please wait a few moments and try again"
	msgSlugFailed   = "Failed to generate a slug"
	msgUploadFailed = "Failed to upload goose image. Please try again in a few moments"
	msgCreateFailed = "We couldn't create your goose :("
	msgNotFound     = "Goose not found"
)

// GooseResponse is the response body for a goose
type GooseResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image"`
	Likes       int64     `json:"likes"`
	Timestamp   time.Time `json:"timestamp"`
}

// ListResponse is the response body for a page of geese
type ListResponse struct {
	Geese []GooseResponse `json:"geese"`
	Sort  string          `json:"sort"`
	Limit int             `json:"limit"`
	Page  int             `json:"page"`
}

// ErrorResponse is the response body for a failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// GooseHandler handles HTTP requests for geese
type GooseHandler struct {
	service hatchery.Service
	limits  form.Limits
	logger  *slog.Logger
}

// NewGooseHandler creates a new goose handler
func NewGooseHandler(service hatchery.Service, limits form.Limits, logger *slog.Logger) *GooseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GooseHandler{
		service: service,
		limits:  limits,
		logger:  logger,
	}
}

// Routes returns a router serving the goose endpoints
func (h *GooseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the goose endpoints to r
func (h *GooseHandler) RegisterRoutes(r chi.Router) {
	r.Post("/goose", h.CreateGoose)
	r.Get("/goose/{slug}", h.GetGoose)
	r.Get("/geese", h.ListGeese)
}

// CreateGoose creates a goose from a multipart form and redirects to it
func (h *GooseHandler) CreateGoose(w http.ResponseWriter, r *http.Request) {
	// Room for the image plus the text fields and multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.Image+3*h.limits.Text+(64<<10))

	req, err := form.ParseCreation(r, h.limits)
	if r.MultipartForm != nil {
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Warn("Failed to remove multipart files", "err", err)
			}
		}()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	goose, err := h.service.CreateGoose(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/goose/"+goose.Slug, http.StatusSeeOther)
}

// GetGoose returns a goose by slug
func (h *GooseHandler) GetGoose(w http.ResponseWriter, r *http.Request) {
	goose, err := h.service.GetGoose(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, toGooseResponse(goose))
}

// ListGeese returns one page of geese
func (h *GooseHandler) ListGeese(w http.ResponseWriter, r *http.Request) {
	params, err := form.ParseList(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	geese, err := h.service.ListGeese(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := ListResponse{
		Geese: make([]GooseResponse, 0, len(geese)),
		Sort:  string(params.Sort),
		Limit: params.Limit,
		Page:  params.Page,
	}
	for _, goose := range geese {
		resp.Geese = append(resp.Geese, toGooseResponse(goose))
	}
	render.JSON(w, r, resp)
}

// writeError maps err to a status and a message that does not leak its cause
func (h *GooseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := msgTryAgain

	var validationErr *hatchery.ValidationError
	var storeErr *hatchery.StoreError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &maxBytesErr):
		status, message = http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, hatchery.ErrGooseNotFound):
		status, message = http.StatusNotFound, msgNotFound
	case errors.Is(err, hatchery.ErrSlugExhausted):
		message = msgSlugFailed
	case errors.Is(err, hatchery.ErrUploadFailed), errors.Is(err, hatchery.ErrTimeSource):
		message = msgUploadFailed
	case errors.As(err, &storeErr) && storeErr.Op == "insert":
		message = msgCreateFailed
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		h.logger.Info("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func toGooseResponse(goose *hatchery.Goose) GooseResponse {
	return GooseResponse{
		Name:        goose.Name,
		Description: goose.Description,
		Color:       goose.Color,
		Slug:        goose.Slug,
		Image:       goose.Image,
		Likes:       goose.Likes,
		Timestamp:   goose.Timestamp,
	}
}
