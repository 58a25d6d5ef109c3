// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-frame/frame"
	"github.com/danielhkuo/quickly-frame/middleware"
	"github.com/danielhkuo/quickly-frame/preview"
	"github.com/danielhkuo/quickly-frame/templates"
)

// writeError maps service errors onto status codes. Unexpected errors are
// logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, frame.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Frame not found")
	case errors.Is(err, frame.ErrNameRequired),
		errors.Is(err, frame.ErrUnknownTemplate),
		errors.Is(err, frame.ErrInvalidJSON),
		errors.Is(err, frame.ErrEventRequired),
		errors.Is(err, preview.ErrMissingImage),
		errors.Is(err, templates.ErrInvalidInteraction):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to "+action,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
