// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type, Authorization.

# Sessions

WithSession reads "Authorization: Bearer <token>" and, when the token
verifies, stores the session in the request context:

	handler := middleware.WithSession(cfg.SessionSecret, mux)

Missing or invalid tokens are not rejected here. The request continues
without a session and owner-scoped operations report not found.

# Rate Limiting

RateLimiter keeps one token bucket per client IP:

	rl := middleware.NewRateLimiter(cfg.InteractRate, cfg.InteractBurst, cfg.TrustedProxies)
	rl.StartCleanup(ctx, time.Minute)
	mux.HandleFunc("GET /f/{id}", rl.Limit(handler))

Clients over budget get 429 with Retry-After.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreateFrameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

GetClientIP returns the direct peer address. ClientIP also honors
X-Forwarded-For and X-Real-IP, but only when the peer is a trusted proxy:

	ip := middleware.ClientIP(r, cfg.TrustedProxies)

X-Forwarded-For is read right to left and the first untrusted hop wins.
The result is the rate limiting key.
*/
package middleware
