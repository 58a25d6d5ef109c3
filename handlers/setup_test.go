// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"

	"github.com/danielhkuo/quickly-frame/cache"
	"github.com/danielhkuo/quickly-frame/db"
	"github.com/danielhkuo/quickly-frame/frame"
	"github.com/danielhkuo/quickly-frame/middleware"
	"github.com/danielhkuo/quickly-frame/preview"
	"github.com/danielhkuo/quickly-frame/templates"
	"github.com/danielhkuo/quickly-frame/testutil"
)

const pollConfig = `{
	"question": "Best fruit?",
	"options": [
		{"displayLabel": "Apple", "buttonLabel": "A"},
		{"displayLabel": "Banana", "buttonLabel": "B"}
	]
}`

type testEnv struct {
	db           *sqlx.DB
	fs           afero.Fs
	uploader     *preview.FSUploader
	views        *cache.ViewCache
	registry     *templates.Registry
	service      *frame.Service
	frames       *FrameHandler
	interactions *InteractionHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testutil.GetTestConfig()

	env := &testEnv{
		db:       testutil.SetupTestDB(t),
		fs:       afero.NewMemMapFs(),
		registry: testutil.NewTestRegistry(t),
	}

	views, err := cache.NewViewCache(cfg.ViewCacheSize)
	if err != nil {
		t.Fatalf("Failed to create view cache: %v", err)
	}
	env.views = views
	env.uploader = preview.NewFSUploader(env.fs, cfg.PreviewDir)
	env.service = frame.NewService(db.NewFrameStore(env.db), env.registry, env.views, env.uploader)
	env.frames = NewFrameHandler(env.service, env.registry)
	env.interactions = NewInteractionHandler(env.service, env.registry, env.views, cfg.BaseURL)
	return env
}

// serve runs h behind the session middleware with the given path values.
func serve(h http.HandlerFunc, req *http.Request, pathValues map[string]string) *httptest.ResponseRecorder {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	middleware.WithSession(testutil.TestSessionSecret, h).ServeHTTP(w, req)
	return w
}
