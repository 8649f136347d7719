// Package handler exposes the CV pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	"github.com/ehstaff/ehstaff-backend/internal/cv/service"
	"github.com/ehstaff/ehstaff-backend/internal/export"
	"github.com/ehstaff/ehstaff-backend/pkg/errors"
	"github.com/ehstaff/ehstaff-backend/pkg/httputil"
	"github.com/ehstaff/ehstaff-backend/pkg/logger"
)

const mimeDOCXDownload = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Handler handles HTTP requests for CV cases
type Handler struct {
	service *service.CVService
	maxSize int64
	log     *logger.Logger
}

// NewHandler creates a new CV case handler
func NewHandler(svc *service.CVService, maxUploadSize int64, log *logger.Logger) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &Handler{
		service: svc,
		maxSize: maxUploadSize,
		log:     log,
	}
}

// RegisterRoutes mounts the CV routes on a router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cv", func(r chi.Router) {
		r.Post("/upload", h.Upload)
		r.Get("/", h.List)
		r.Route("/{caseID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Get("/progress", h.Progress)
			r.Put("/candidate", h.UpdateCandidate)
			r.Post("/approve", h.Approve)
			r.Put("/registration", h.SaveRegistrationForm)
			r.Get("/export", h.ExportCV)
			r.Get("/export/registration", h.ExportRegistrationForm)
		})
	})
}

// Upload handles POST /cv/upload. Accepts a multipart form with a "file"
// part; processing continues in the background after the case is created.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing file in request"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.Error(w, errors.Internal("failed to read uploaded file"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	userID := httputil.GetUserID(r.Context())

	c, err := h.service.Create(r.Context(), userID, header.Filename, mimeType, data)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, c)
}

// Get handles GET /cv/{caseID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.caseFromRequest(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

// List handles GET /cv with page/per_page query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)

	cases, total, err := h.service.List(r.Context(), userID, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	httputil.JSONWithMeta(w, http.StatusOK, cases, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Progress handles GET /cv/{caseID}/progress.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, progress)
}

// UpdateCandidate handles PUT /cv/{caseID}/candidate with a candidate
// record body.
func (h *Handler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var candidate domain.CandidateRecord
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		httputil.Error(w, errors.BadRequest("invalid candidate record body"))
		return
	}

	c, err := h.service.UpdateCandidate(r.Context(), chi.URLParam(r, "caseID"), &candidate)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

// Approve handles POST /cv/{caseID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	approvedBy := httputil.GetUserID(r.Context())

	c, err := h.service.Approve(r.Context(), chi.URLParam(r, "caseID"), approvedBy)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

// SaveRegistrationForm handles PUT /cv/{caseID}/registration.
func (h *Handler) SaveRegistrationForm(w http.ResponseWriter, r *http.Request) {
	var form domain.RegistrationForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httputil.Error(w, errors.BadRequest("invalid registration form body"))
		return
	}

	caseID := chi.URLParam(r, "caseID")
	if err := h.service.SaveRegistrationForm(r.Context(), caseID, &form); err != nil {
		httputil.Error(w, err)
		return
	}

	c, err := h.service.Get(r.Context(), caseID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

// ExportCV handles GET /cv/{caseID}/export and streams the rendered CV
// document.
func (h *Handler) ExportCV(w http.ResponseWriter, r *http.Request) {
	c, err := h.caseFromRequest(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if c.Candidate == nil {
		httputil.Error(w, errors.BadRequest("case has no candidate record to export"))
		return
	}

	photo := fetchPhoto(r.Context(), c.Candidate.PersonalInfo.PhotoURL)
	data, err := export.RenderCV(c.Candidate, photo)
	if err != nil {
		h.log.WithCaseID(c.ID).Error().Err(err).Msg("cv export failed")
		httputil.Error(w, err)
		return
	}

	serveDocx(w, export.CVFileName(c.Candidate), data)
}

// ExportRegistrationForm handles GET /cv/{caseID}/export/registration.
func (h *Handler) ExportRegistrationForm(w http.ResponseWriter, r *http.Request) {
	c, err := h.caseFromRequest(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if c.RegistrationForm == nil {
		httputil.Error(w, errors.BadRequest("case has no registration form to export"))
		return
	}

	data, err := export.RenderRegistrationForm(c.RegistrationForm)
	if err != nil {
		h.log.WithCaseID(c.ID).Error().Err(err).Msg("registration form export failed")
		httputil.Error(w, err)
		return
	}

	serveDocx(w, export.RegistrationFileName(c.ID), data)
}

// Delete handles DELETE /cv/{caseID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "caseID")); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) caseFromRequest(r *http.Request) (*domain.Case, error) {
	caseID := chi.URLParam(r, "caseID")
	if caseID == "" {
		return nil, errors.BadRequest("missing caseID parameter")
	}
	return h.service.Get(r.Context(), caseID)
}

func serveDocx(w http.ResponseWriter, fileName string, data []byte) {
	w.Header().Set("Content-Type", mimeDOCXDownload)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// fetchPhoto is swapped out in tests to avoid network access.
var fetchPhoto = func(ctx context.Context, url string) *export.Photo {
	return export.FetchPhoto(ctx, url)
}
