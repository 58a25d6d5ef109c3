// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"

	"github.com/danielhkuo/quickly-frame/models"
	"github.com/danielhkuo/quickly-frame/templates"
	"github.com/danielhkuo/quickly-frame/testutil"
)

// TestFullFrameWorkflow walks a frame through its whole life:
// 1. Create from the poll template
// 2. Edit the draft and publish it
// 3. Register and remove a webhook
// 4. Upload a preview
// 5. Serve the published frame and vote on it
// 6. Delete the frame
func TestFullFrameWorkflow(t *testing.T) {
	mux, fs := newTestRouter(t)
	alice := testutil.AuthHeader(t, "alice")
	bob := testutil.AuthHeader(t, "bob")

	do := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
		return w
	}

	// Step 1: Create
	w := do("POST", "/frames", models.CreateFrameRequest{Name: "Fruit poll", Template: "poll"}, alice)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.Frame
	testutil.AssertJSON(t, w, &created)
	if created.ID == "" {
		t.Fatal("Step 1 - Missing frame id")
	}
	base := "/frames/" + created.ID

	// Another user cannot see it
	testutil.AssertStatus(t, do("GET", base, nil, bob), http.StatusNotFound)

	// Step 2: Draft and publish
	draft := `{"question":"Best fruit?","options":[{"displayLabel":"Apple","buttonLabel":"A"},{"displayLabel":"Pear","buttonLabel":"P"}]}`
	req := httptest.NewRequest("PUT", base+"/draft", bytes.NewReader([]byte(draft)))
	req.Header.Set("Authorization", alice["Authorization"])
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("POST", base+"/publish", nil, alice)
	testutil.AssertStatus(t, w, http.StatusOK)
	var published models.Frame
	testutil.AssertJSON(t, w, &published)
	assertJSONEqual(t, draft, string(published.Config))

	// Step 3: Webhooks
	hook := "https://hooks.example/cast"
	w = do("PUT", base+"/webhooks", models.UpdateWebhookRequest{Event: "cast", URL: &hook}, alice)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = do("PUT", base+"/webhooks", models.UpdateWebhookRequest{Event: "cast"}, alice)
	testutil.AssertStatus(t, w, http.StatusOK)
	var unhooked models.Frame
	testutil.AssertJSON(t, w, &unhooked)
	if _, ok := unhooked.Webhooks["cast"]; ok {
		t.Error("Step 3 - cast webhook should be removed")
	}

	// Step 4: Preview
	markup := `<meta property="og:image" content="data:image/png;base64,aGVsbG8=" />`
	w = do("POST", base+"/preview", models.UpdatePreviewRequest{Preview: markup}, alice)
	testutil.AssertStatus(t, w, http.StatusNoContent)
	if ok, _ := afero.Exists(fs, "previews/"+created.ID+".png"); !ok {
		t.Error("Step 4 - preview file not written")
	}

	// Step 5: Public view and votes
	w = do("GET", "/f/"+created.ID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var render templates.Render
	testutil.AssertJSON(t, w, &render)
	if len(render.Buttons) != 2 || render.Buttons[1].Label != "P" {
		t.Errorf("Step 5 - unexpected buttons %+v", render.Buttons)
	}

	for _, fid := range []string{"1", "2", "3"} {
		w = do("POST", "/f/"+created.ID+"/vote", models.InteractRequest{ButtonIndex: 2, FID: fid}, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w = do("GET", base, nil, alice)
	testutil.AssertStatus(t, w, http.StatusOK)
	var afterVotes models.Frame
	testutil.AssertJSON(t, w, &afterVotes)
	if afterVotes.CurrentMonthCalls != 3 {
		t.Errorf("Step 5 - expected 3 calls, got %d", afterVotes.CurrentMonthCalls)
	}
	var state struct {
		TotalVotes int `json:"totalVotes"`
	}
	if err := json.Unmarshal(afterVotes.Storage, &state); err != nil || state.TotalVotes != 3 {
		t.Errorf("Step 5 - expected 3 votes in storage, got %s", afterVotes.Storage)
	}

	// Step 6: Delete
	testutil.AssertStatus(t, do("DELETE", base, nil, bob), http.StatusNotFound)
	testutil.AssertStatus(t, do("DELETE", base, nil, alice), http.StatusNoContent)
	testutil.AssertStatus(t, do("GET", base, nil, alice), http.StatusNotFound)
	testutil.AssertStatus(t, do("GET", "/f/"+created.ID, nil, nil), http.StatusNotFound)
}

func assertJSONEqual(t *testing.T, expected, actual string) {
	t.Helper()
	var e, a interface{}
	if err := json.Unmarshal([]byte(expected), &e); err != nil {
		t.Fatalf("invalid expected JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(actual), &a); err != nil {
		t.Fatalf("invalid actual JSON: %v", err)
	}
	eb, _ := json.Marshal(e)
	ab, _ := json.Marshal(a)
	if !bytes.Equal(eb, ab) {
		t.Errorf("JSON mismatch:\nexpected %s\nactual   %s", eb, ab)
	}
}
