// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package frame is the access layer for frames: owned, named template
configurations with a draft and a published config.

# Ownership

Every operation except UpdateStorage, UpdateCalls, IncrementCalls and
Lookup is scoped to the user in the request context:

	ctx = session.With(ctx, session.Session{UserID: "alice"})
	f, err := svc.Get(ctx, id)

A missing session, a missing frame and someone else's frame all return
ErrNotFound. Ownership is checked before any input validation.

The unscoped writes serve public traffic and leave updated_at untouched, so
votes do not reorder ListRecent.

# Draft and Published Config

UpdateDraftConfig edits the draft. Publish copies draft to published,
Revert copies published back to draft.

# Revalidation

Mutations that change a frame's detail view revalidate "/frame/{id}".
Delete revalidates "/".
*/
package frame
