// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session carries the authenticated caller through context.Context.
// It has no internal dependencies so every layer can import it.
package session

import "context"

// Session identifies the signed-in user making a request.
type Session struct {
	UserID string
}

type sessionKey struct{}

// With returns a context carrying s.
func With(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session in ctx. ok is false when there is none or
// it has no user.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.UserID == "" {
		return Session{}, false
	}
	return s, true
}
