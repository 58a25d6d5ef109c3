// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickly-frame/cache"
	"github.com/danielhkuo/quickly-frame/cliparse"
	"github.com/danielhkuo/quickly-frame/db"
	"github.com/danielhkuo/quickly-frame/frame"
	"github.com/danielhkuo/quickly-frame/handlers"
	"github.com/danielhkuo/quickly-frame/metrics"
	"github.com/danielhkuo/quickly-frame/middleware"
	"github.com/danielhkuo/quickly-frame/preview"
	"github.com/danielhkuo/quickly-frame/templates"
)

// NewRouter wires the frame service and every route. Background work it
// starts stops when ctx is done.
func NewRouter(ctx context.Context, conn *sqlx.DB, cfg cliparse.Config, registry *templates.Registry, uploader preview.Uploader) (http.Handler, error) {
	views, err := cache.NewViewCache(cfg.ViewCacheSize)
	if err != nil {
		return nil, err
	}

	svc := frame.NewService(db.NewFrameStore(conn), registry, views, uploader)

	// Initialize handlers
	frameHandler := handlers.NewFrameHandler(svc, registry)
	interactionHandler := handlers.NewInteractionHandler(svc, registry, views, cfg.BaseURL)

	limiter := middleware.NewRateLimiter(cfg.InteractRate, cfg.InteractBurst, cfg.TrustedProxies)
	limiter.StartCleanup(ctx, time.Minute)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.PingContext(r.Context()); err != nil {
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Owner API (session required)
	mux.HandleFunc("GET /frames", middleware.WithLogging(frameHandler.ListFrames))
	mux.HandleFunc("GET /frames/recent", middleware.WithLogging(frameHandler.ListRecentFrames))
	mux.HandleFunc("POST /frames", middleware.WithLogging(frameHandler.CreateFrame))
	mux.HandleFunc("GET /frames/{id}", middleware.WithLogging(frameHandler.GetFrame))
	mux.HandleFunc("PATCH /frames/{id}/name", middleware.WithLogging(frameHandler.RenameFrame))
	mux.HandleFunc("PUT /frames/{id}/draft", middleware.WithLogging(frameHandler.UpdateDraft))
	mux.HandleFunc("POST /frames/{id}/publish", middleware.WithLogging(frameHandler.PublishFrame))
	mux.HandleFunc("POST /frames/{id}/revert", middleware.WithLogging(frameHandler.RevertFrame))
	mux.HandleFunc("PUT /frames/{id}/linked-page", middleware.WithLogging(frameHandler.UpdateLinkedPage))
	mux.HandleFunc("PUT /frames/{id}/webhooks", middleware.WithLogging(frameHandler.UpdateWebhook))
	mux.HandleFunc("POST /frames/{id}/preview", middleware.WithLogging(frameHandler.UpdatePreview))
	mux.HandleFunc("DELETE /frames/{id}", middleware.WithLogging(frameHandler.DeleteFrame))
	mux.HandleFunc("GET /templates", middleware.WithLogging(frameHandler.ListTemplates))

	// Public frames (rate limited per client)
	mux.HandleFunc("GET /f/{id}", middleware.WithLogging(limiter.Limit(interactionHandler.ViewFrame)))
	mux.HandleFunc("POST /f/{id}/{function}", middleware.WithLogging(limiter.Limit(interactionHandler.Interact)))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-frame API v1"))
	})

	// Instrumentation sits directly on the mux so the matched pattern is
	// visible; WithSession hands the mux a request copy.
	return middleware.CORS(middleware.WithSession(cfg.SessionSecret, metrics.InstrumentHandler(mux))), nil
}
