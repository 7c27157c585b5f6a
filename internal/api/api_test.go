package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MatrixedMind/MatrixedMind/internal/blob"
	"github.com/MatrixedMind/MatrixedMind/internal/indexer"
	"github.com/MatrixedMind/MatrixedMind/internal/noteservice"
	"github.com/MatrixedMind/MatrixedMind/internal/notestore"
)

// testEnv sets up a temp blob store, service, and router. An empty key
// means auth disabled.
func testEnv(t *testing.T, authKey string) http.Handler {
	t.Helper()

	fs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixed := time.Date(2025, 10, 24, 12, 34, 56, 0, time.UTC)
	notes := notestore.New(fs, notestore.WithClock(func() time.Time { return fixed }))
	svc := noteservice.New(notes, indexer.NewMaintainer(fs, logger), indexer.NewReader(fs, logger), nil, logger)
	return NewRouter(svc, authKey != "", authKey, nil)
}

func postNote(t *testing.T, router http.Handler, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWriteAndGetNote(t *testing.T) {
	router := testEnv(t, "")

	w := postNote(t, router, map[string]string{
		"project": "Personal Wiki",
		"section": "Ideas",
		"title":   "Offline Sync Plan",
		"body":    "Test",
		"mode":    "append",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("write status = %d, body = %s", w.Code, w.Body.String())
	}
	var res NoteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Path != "notes/Personal_Wiki/Ideas/Offline_Sync_Plan.md" {
		t.Errorf("path = %q", res.Path)
	}
	if !strings.Contains(res.Content, "# Offline Sync Plan") {
		t.Errorf("content = %q", res.Content)
	}

	q := url.Values{"project": {"Personal Wiki"}, "section": {"Ideas"}, "title": {"Offline Sync Plan"}}
	req := httptest.NewRequest(http.MethodGet, "/notes?"+q.Encode(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !strings.Contains(res.Content, "Test") {
		t.Errorf("content = %q", res.Content)
	}
}

func TestAppendTwice(t *testing.T) {
	router := testEnv(t, "")

	note := map[string]string{"project": "W", "section": "S", "title": "T", "body": "B1"}
	if w := postNote(t, router, note); w.Code != http.StatusOK {
		t.Fatalf("first write = %d", w.Code)
	}
	note["body"] = "B2"
	w := postNote(t, router, note)
	if w.Code != http.StatusOK {
		t.Fatalf("second write = %d", w.Code)
	}
	var res NoteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !strings.Contains(res.Content, "B1") || !strings.Contains(res.Content, "B2") {
		t.Errorf("content = %q, want both bodies", res.Content)
	}
}

func TestWriteValidation(t *testing.T) {
	router := testEnv(t, "")

	cases := []map[string]string{
		{"project": "P", "section": "/Ideas", "title": "T", "body": "b"},
		{"project": "P", "section": "Ideas/", "title": "T", "body": "b"},
		{"project": "", "title": "T", "body": "b"},
		{"project": "P", "title": "", "body": "b"},
	}
	for _, c := range cases {
		if w := postNote(t, router, c); w.Code != http.StatusBadRequest {
			t.Errorf("payload %v status = %d, want 400", c, w.Code)
		}
	}
}

func TestWriteInvalidJSON(t *testing.T) {
	router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetMissingNote(t *testing.T) {
	router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/notes?project=W&title=Nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetIndex(t *testing.T) {
	router := testEnv(t, "")

	_ = postNote(t, router, map[string]string{"project": "W", "section": "Work/Q1 Planning", "title": "Budget", "body": "x"})
	_ = postNote(t, router, map[string]string{"project": "W", "section": "Ideas", "title": "One", "body": "y"})

	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res IndexResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Status != "ok" || len(res.Projects) != 1 {
		t.Fatalf("response = %+v", res)
	}
	got := map[string]int{}
	for _, sec := range res.Projects[0].Sections {
		got[sec.Name] = len(sec.Notes)
	}
	if got["Ideas"] != 1 || got["Work/Q1_Planning"] != 1 {
		t.Errorf("sections = %v", got)
	}
}

func TestAuthRequired(t *testing.T) {
	router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/index", nil)
	req.Header.Set(KeyHeader, "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/index", nil)
	req.Header.Set(KeyHeader, "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("correct key: status = %d, want 200", w.Code)
	}
}

func TestAuthDisabledPassthrough(t *testing.T) {
	router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
