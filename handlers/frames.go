// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-frame/frame"
	"github.com/danielhkuo/quickly-frame/middleware"
	"github.com/danielhkuo/quickly-frame/models"
	"github.com/danielhkuo/quickly-frame/templates"
)

const (
	maxConfigBytes  = 1 << 20
	maxPreviewBytes = 8 << 20
)

// FrameHandler serves the owner API. Every route relies on the session
// attached by middleware.WithSession.
type FrameHandler struct {
	frames    *frame.Service
	templates *templates.Registry
}

func NewFrameHandler(frames *frame.Service, registry *templates.Registry) *FrameHandler {
	return &FrameHandler{frames: frames, templates: registry}
}

// ListFrames handles GET /frames
func (h *FrameHandler) ListFrames(w http.ResponseWriter, r *http.Request) {
	frames, err := h.frames.List(r.Context())
	if err != nil {
		writeError(w, r, err, "list frames")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.FrameListResponse{Frames: frames})
}

// ListRecentFrames handles GET /frames/recent
func (h *FrameHandler) ListRecentFrames(w http.ResponseWriter, r *http.Request) {
	frames, err := h.frames.ListRecent(r.Context())
	if err != nil {
		writeError(w, r, err, "list frames")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.FrameListResponse{Frames: frames})
}

// GetFrame handles GET /frames/{id}
func (h *FrameHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	f, err := h.frames.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "load frame")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, f)
}

// CreateFrame handles POST /frames
func (h *FrameHandler) CreateFrame(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFrameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	f, err := h.frames.Create(r.Context(), frame.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Template:    req.Template,
	})
	if err != nil {
		writeError(w, r, err, "create frame")
		return
	}

	slog.Info("frame created", "frame_id", f.ID, "owner", f.Owner, "template", f.Template)
	middleware.JSONResponse(w, http.StatusCreated, f)
}

// RenameFrame handles PATCH /frames/{id}/name
func (h *FrameHandler) RenameFrame(w http.ResponseWriter, r *http.Request) {
	var req models.RenameFrameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	if err := h.frames.Rename(r.Context(), id, req.Name); err != nil {
		writeError(w, r, err, "rename frame")
		return
	}
	h.respondWithFrame(w, r, id)
}

// UpdateDraft handles PUT /frames/{id}/draft. The body is the new draft
// config itself.
func (h *FrameHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConfigBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Config too large")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	id := r.PathValue("id")
	if err := h.frames.UpdateDraftConfig(r.Context(), id, json.RawMessage(body)); err != nil {
		writeError(w, r, err, "update draft")
		return
	}
	h.respondWithFrame(w, r, id)
}

// PublishFrame handles POST /frames/{id}/publish
func (h *FrameHandler) PublishFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.frames.Publish(r.Context(), id); err != nil {
		writeError(w, r, err, "publish frame")
		return
	}
	slog.Info("frame published", "frame_id", id)
	h.respondWithFrame(w, r, id)
}

// RevertFrame handles POST /frames/{id}/revert
func (h *FrameHandler) RevertFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.frames.Revert(r.Context(), id); err != nil {
		writeError(w, r, err, "revert frame")
		return
	}
	slog.Info("frame draft reverted", "frame_id", id)
	h.respondWithFrame(w, r, id)
}

// UpdateLinkedPage handles PUT /frames/{id}/linked-page
func (h *FrameHandler) UpdateLinkedPage(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateLinkedPageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	if err := h.frames.UpdateLinkedPage(r.Context(), id, req.URL); err != nil {
		writeError(w, r, err, "update linked page")
		return
	}
	h.respondWithFrame(w, r, id)
}

// UpdateWebhook handles PUT /frames/{id}/webhooks
func (h *FrameHandler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateWebhookRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	if err := h.frames.UpdateWebhook(r.Context(), id, req.Event, req.URL); err != nil {
		writeError(w, r, err, "update webhook")
		return
	}
	h.respondWithFrame(w, r, id)
}

// UpdatePreview handles POST /frames/{id}/preview
func (h *FrameHandler) UpdatePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)

	var req models.UpdatePreviewRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	if err := h.frames.UpdatePreview(r.Context(), id, req.Preview); err != nil {
		writeError(w, r, err, "update preview")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFrame handles DELETE /frames/{id}
func (h *FrameHandler) DeleteFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.frames.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "delete frame")
		return
	}
	slog.Info("frame deleted", "frame_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates handles GET /templates
func (h *FrameHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tags := h.templates.Tags()
	infos := make([]models.TemplateInfo, 0, len(tags))
	for _, tag := range tags {
		t, _ := h.templates.Lookup(tag)
		infos = append(infos, models.TemplateInfo{
			Tag:         tag,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	middleware.JSONResponse(w, http.StatusOK, models.TemplateListResponse{Templates: infos})
}

func (h *FrameHandler) respondWithFrame(w http.ResponseWriter, r *http.Request, id string) {
	f, err := h.frames.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "load frame")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, f)
}
