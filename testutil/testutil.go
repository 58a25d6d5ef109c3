// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickly-frame/auth"
	"github.com/danielhkuo/quickly-frame/cliparse"
	"github.com/danielhkuo/quickly-frame/db"
	"github.com/danielhkuo/quickly-frame/fonts"
	"github.com/danielhkuo/quickly-frame/models"
	"github.com/danielhkuo/quickly-frame/session"
	"github.com/danielhkuo/quickly-frame/templates"
	"github.com/danielhkuo/quickly-frame/templates/poll"
)

// TestSessionSecret signs session tokens in tests
const TestSessionSecret = "test-session-secret"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, cliparse.DatabaseSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		SessionSecret: TestSessionSecret,
		PreviewDir:    "previews",
		FontsURL:      "http://fonts.invalid",
		BaseURL:       "http://frames.test",
		LogLevel:      "info",
		LogFormat:     "json",
		InteractRate:  1000,
		InteractBurst: 1000,
		ViewCacheSize: 16,
	}
}

// StubFonts returns one regular face for any family without network access
type StubFonts struct {
	mu       sync.Mutex
	Families []string
}

func (s *StubFonts) LoadFamily(_ context.Context, family string) ([]fonts.Font, error) {
	s.mu.Lock()
	s.Families = append(s.Families, family)
	s.mu.Unlock()
	return []fonts.Font{{Name: family, Weight: 400, Style: "normal"}}, nil
}

// NewTestRegistry returns a registry with the poll template on stub fonts
func NewTestRegistry(t *testing.T) *templates.Registry {
	t.Helper()
	r := templates.NewRegistry()
	if err := r.Register(poll.Tag, poll.New(&StubFonts{})); err != nil {
		t.Fatalf("Failed to register poll template: %v", err)
	}
	return r
}

// CreateTestFrame inserts a poll frame owned by owner and returns it.
// config is used for both the published and draft config.
func CreateTestFrame(t *testing.T, conn *sqlx.DB, owner string, config string) *models.Frame {
	t.Helper()

	now := time.Now().UTC()
	f, err := db.NewFrameStore(conn).Insert(context.Background(), &models.Frame{
		ID:          auth.NewFrameID(),
		Owner:       owner,
		Name:        "Test Frame",
		Template:    poll.Tag,
		Config:      models.JSON(config),
		DraftConfig: models.JSON(config),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("Failed to create test frame: %v", err)
	}
	return f
}

// AuthHeader returns an Authorization header for userID
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()
	token, err := auth.IssueSessionToken(userID, TestSessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// SessionContext returns a context signed in as userID
func SessionContext(userID string) context.Context {
	return session.With(context.Background(), session.Session{UserID: userID})
}
