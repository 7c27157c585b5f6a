package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MatrixedMind/MatrixedMind/internal/indexer"
	"github.com/MatrixedMind/MatrixedMind/internal/noteservice"
	"github.com/MatrixedMind/MatrixedMind/internal/notestore"
	"github.com/MatrixedMind/MatrixedMind/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	fs := testutil.TestStore(t)
	logger := testutil.DiscardLogger()
	notes := notestore.New(fs, notestore.WithClock(testutil.FixedClock(2025, time.October, 24, 12, 34, 56)))
	svc := noteservice.New(notes, indexer.NewMaintainer(fs, logger), indexer.NewReader(fs, logger), nil, logger)
	return New(svc)
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("no text content in result: %+v", r)
	return ""
}

func TestSaveAndReadNote(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	res, err := srv.saveNote(ctx, toolRequest("save_note", map[string]any{
		"project": "Personal Wiki",
		"section": "Ideas",
		"title":   "Offline Sync Plan",
		"body":    "Test",
	}))
	if err != nil {
		t.Fatalf("saveNote: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "notes/Personal_Wiki/Ideas/Offline_Sync_Plan.md") {
		t.Errorf("save result = %q", got)
	}

	res, err = srv.readNote(ctx, toolRequest("read_note", map[string]any{
		"project": "Personal Wiki",
		"section": "Ideas",
		"title":   "Offline Sync Plan",
	}))
	if err != nil {
		t.Fatalf("readNote: %v", err)
	}
	if got := resultText(t, res); !strings.Contains(got, "Test") {
		t.Errorf("read result = %q", got)
	}
}

func TestSaveNoteValidation(t *testing.T) {
	srv := testServer(t)

	res, err := srv.saveNote(context.Background(), toolRequest("save_note", map[string]any{
		"project": "P",
		"section": "/bad",
		"title":   "T",
		"body":    "b",
	}))
	if err != nil {
		t.Fatalf("saveNote: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for malformed section")
	}
}

func TestReadMissingNote(t *testing.T) {
	srv := testServer(t)
	res, err := srv.readNote(context.Background(), toolRequest("read_note", map[string]any{
		"project": "P",
		"title":   "Nope",
	}))
	if err != nil {
		t.Fatalf("readNote: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for missing note")
	}
}

func TestListNotes(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	_, _ = srv.saveNote(ctx, toolRequest("save_note", map[string]any{
		"project": "W", "section": "S", "title": "T", "body": "b",
	}))

	res, err := srv.listNotes(ctx, toolRequest("list_notes", nil))
	if err != nil {
		t.Fatalf("listNotes: %v", err)
	}
	got := resultText(t, res)
	if !strings.Contains(got, `"W"`) || !strings.Contains(got, `"T"`) {
		t.Errorf("listing = %q", got)
	}
}
