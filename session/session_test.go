// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"testing"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantOK bool
		wantID string
	}{
		{"no session", context.Background(), false, ""},
		{"empty user", With(context.Background(), Session{}), false, ""},
		{"signed in", With(context.Background(), Session{UserID: "user-1"}), true, "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := FromContext(tt.ctx)
			if ok != tt.wantOK {
				t.Fatalf("FromContext() ok = %v, want %v", ok, tt.wantOK)
			}
			if s.UserID != tt.wantID {
				t.Errorf("FromContext() user = %q, want %q", s.UserID, tt.wantID)
			}
		})
	}
}
