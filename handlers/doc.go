// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Frame API.

# Handler Types

Each handler is a struct built from the frame service and the template
registry:

  - FrameHandler: the owner dashboard API (create, edit, publish, delete)
  - InteractionHandler: published frames as seen by feed clients

	frameHandler := handlers.NewFrameHandler(svc, registry)

# Owner API

Routes act on frames owned by the session's user:

	GET    /frames               → ListFrames
	GET    /frames/recent        → ListRecentFrames (10, newest first)
	POST   /frames               → CreateFrame
	GET    /frames/{id}          → GetFrame
	PATCH  /frames/{id}/name     → RenameFrame
	PUT    /frames/{id}/draft    → UpdateDraft (raw JSON body)
	POST   /frames/{id}/publish  → PublishFrame (draft → published)
	POST   /frames/{id}/revert   → RevertFrame (published → draft)
	PUT    /frames/{id}/linked-page → UpdateLinkedPage
	PUT    /frames/{id}/webhooks → UpdateWebhook
	POST   /frames/{id}/preview  → UpdatePreview
	DELETE /frames/{id}          → DeleteFrame

A missing session and someone else's frame both answer 404.

# Public Frames

	GET  /f/{id}            → ViewFrame (cached under /frame/{id})
	POST /f/{id}/{function} → Interact

Interact runs the named template transition against the published config,
stores the returned state and increments the frame's call count. The
increment happens in SQL; the state write does not, so two interactions
racing on one frame can lose a state update. Neither write changes the
frame's updated_at.
*/
package handlers
