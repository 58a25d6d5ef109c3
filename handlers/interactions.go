// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-frame/cache"
	"github.com/danielhkuo/quickly-frame/frame"
	"github.com/danielhkuo/quickly-frame/metrics"
	"github.com/danielhkuo/quickly-frame/middleware"
	"github.com/danielhkuo/quickly-frame/models"
	"github.com/danielhkuo/quickly-frame/templates"
)

// InteractionHandler serves published frames to feed clients. It only ever
// reads the published config and the frame's storage.
type InteractionHandler struct {
	frames    *frame.Service
	templates *templates.Registry
	views     *cache.ViewCache
	baseURL   string
}

func NewInteractionHandler(frames *frame.Service, registry *templates.Registry, views *cache.ViewCache, baseURL string) *InteractionHandler {
	return &InteractionHandler{
		frames:    frames,
		templates: registry,
		views:     views,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// ViewFrame handles GET /f/{id}
func (h *InteractionHandler) ViewFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	path := cache.FramePath(id)

	if view, ok := h.views.Get(path); ok {
		writeView(w, view)
		return
	}

	f, err := h.frames.Lookup(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "load frame")
		return
	}

	tmpl, ok := h.templates.Lookup(f.Template)
	if !ok {
		slog.Error("frame uses unregistered template", "frame_id", id, "template", f.Template)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render frame")
		return
	}

	render, err := tmpl.Initial(r.Context(), json.RawMessage(f.Config), json.RawMessage(f.Storage))
	if err != nil {
		writeError(w, r, err, "render frame")
		return
	}
	h.setPostURL(id, render)

	view, err := json.Marshal(render)
	if err != nil {
		slog.Error("failed to encode render", "frame_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render frame")
		return
	}

	h.views.Set(path, view)
	writeView(w, view)
}

// Interact handles POST /f/{id}/{function}. The transition's new state is
// written back to storage and the call counter goes up by one.
func (h *InteractionHandler) Interact(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	function := r.PathValue("function")

	var req models.InteractRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	f, err := h.frames.Lookup(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "load frame")
		return
	}

	transition, err := h.templates.Transition(f.Template, function)
	if err != nil {
		if errors.Is(err, templates.ErrUnknownFunction) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Unknown frame function")
			return
		}
		writeError(w, r, err, "find frame function")
		return
	}

	render, state, err := transition(r.Context(), json.RawMessage(f.Config), json.RawMessage(f.Storage), templates.Interaction{
		ButtonIndex: req.ButtonIndex,
		FID:         req.FID,
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, templates.ErrInvalidInteraction) {
			outcome = "rejected"
		}
		metrics.RecordInteraction(f.Template, function, outcome)
		writeError(w, r, err, "handle interaction")
		return
	}

	if err := h.frames.UpdateStorage(r.Context(), id, state); err != nil {
		metrics.RecordInteraction(f.Template, function, "error")
		writeError(w, r, err, "save frame state")
		return
	}
	if err := h.frames.IncrementCalls(r.Context(), id, 1); err != nil {
		// The interaction already happened; a missed count is not worth failing it.
		slog.Warn("failed to count frame call", "frame_id", id, "error", err)
	}
	h.views.Revalidate(cache.FramePath(id))
	metrics.RecordInteraction(f.Template, function, "ok")

	slog.Debug("frame interaction", "frame_id", id, "function", function, "button", req.ButtonIndex)

	h.setPostURL(id, render)
	middleware.JSONResponse(w, http.StatusOK, render)
}

func (h *InteractionHandler) setPostURL(id string, render *templates.Render) {
	if render.FunctionName == "" {
		return
	}
	render.PostURL = h.baseURL + "/f/" + id + "/" + render.FunctionName
}

func writeView(w http.ResponseWriter, view []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(view)
}
