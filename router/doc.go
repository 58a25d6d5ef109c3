// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Frame API.

# Route Registration

NewRouter builds the frame service, the handlers and the full middleware
chain:

	handler, err := router.NewRouter(ctx, db, cfg, registry, uploader)

The result is CORS → WithSession → metrics instrumentation → ServeMux.

# Endpoints

Infrastructure:

	GET /health  - Database ping
	GET /metrics - Prometheus metrics
	GET /        - Banner

Owner API (Bearer session token):

	GET    /frames                  - List frames
	GET    /frames/recent           - Ten most recently updated
	POST   /frames                  - Create from a template
	GET    /frames/{id}             - Frame details
	PATCH  /frames/{id}/name        - Rename
	PUT    /frames/{id}/draft       - Replace draft config
	POST   /frames/{id}/publish     - Draft → published
	POST   /frames/{id}/revert      - Published → draft
	PUT    /frames/{id}/linked-page - Set or clear linked page
	PUT    /frames/{id}/webhooks    - Set or remove one webhook
	POST   /frames/{id}/preview     - Upload preview image
	DELETE /frames/{id}             - Delete
	GET    /templates               - Available templates

Public frames (rate limited per client IP):

	GET  /f/{id}            - Initial render of the published config
	POST /f/{id}/{function} - Template interaction
*/
package router
