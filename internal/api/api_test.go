package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/session"
	"github.com/starford/redate/internal/testutil"
)

// testEnv sets up a temp folder, journal, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string, names ...string) (string, http.Handler) {
	t.Helper()
	dir, _ := testutil.TestFolder(t, names...)
	svc := session.NewService(session.WithJournal(testutil.TestJournal(t)))
	router := NewRouter(svc, authToken != "", authToken, nil, "")
	return dir, router
}

func renameBody(t *testing.T, folder string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"folder": folder,
		"prefix": "NEW_",
		"layout": map[string]any{
			"year":  map[string]int{"start": 4, "length": 4},
			"month": map[string]int{"start": 8, "length": 2},
			"day":   map[string]int{"start": 10, "length": 2},
		},
		"expected_length": 12,
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func do(t *testing.T, router http.Handler, method, path string, body []byte, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestPlan_DryRun(t *testing.T) {
	dir, router := testEnv(t, "", "stmt20240115.pdf", "readme.txt")

	w := do(t, router, http.MethodPost, "/plan", renameBody(t, dir))
	if w.Code != http.StatusOK {
		t.Fatalf("plan = %d: %s", w.Code, w.Body.String())
	}
	var res Result
	decode(t, w, &res)
	if res.Renamed[filepath.Join(dir, "stmt20240115.pdf")] != filepath.Join(dir, "NEW_20240115.pdf") {
		t.Errorf("renamed = %v", res.Renamed)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "readme.txt" {
		t.Errorf("skipped = %v", res.Skipped)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+res.Checksum+`"` {
		t.Errorf("ETag = %q, checksum = %q", etag, res.Checksum)
	}
	if _, err := os.Stat(filepath.Join(dir, "stmt20240115.pdf")); err != nil {
		t.Errorf("dry run touched source: %v", err)
	}
}

func TestRenameAndUndo(t *testing.T) {
	dir, router := testEnv(t, "", "stmt20240115.pdf")

	plan := do(t, router, http.MethodPost, "/plan", renameBody(t, dir))
	etag := plan.Header().Get("ETag")

	w := do(t, router, http.MethodPost, "/rename", renameBody(t, dir), "If-Match", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("rename = %d: %s", w.Code, w.Body.String())
	}
	var res Result
	decode(t, w, &res)
	if res.Successful != 1 || res.BatchID == "" {
		t.Errorf("result = %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "NEW_20240115.pdf")); err != nil {
		t.Fatalf("renamed file: %v", err)
	}

	w = do(t, router, http.MethodGet, "/undo", nil)
	var pending PendingResponse
	decode(t, w, &pending)
	if len(pending.Batches) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending.Batches))
	}

	w = do(t, router, http.MethodPost, "/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo = %d: %s", w.Code, w.Body.String())
	}
	var rep UndoReport
	decode(t, w, &rep)
	if rep.Status != "success" || len(rep.Undone) != 1 {
		t.Errorf("undo report = %+v", rep)
	}
	if _, err := os.Stat(filepath.Join(dir, "stmt20240115.pdf")); err != nil {
		t.Errorf("restored file: %v", err)
	}

	w = do(t, router, http.MethodGet, "/history", nil)
	var hist HistoryResponse
	decode(t, w, &hist)
	if hist.Total != 1 || len(hist.Batches) != 1 {
		t.Fatalf("history = %+v", hist)
	}

	w = do(t, router, http.MethodGet, "/history/"+res.BatchID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("batch = %d: %s", w.Code, w.Body.String())
	}
	var detail BatchDetail
	decode(t, w, &detail)
	if len(detail.Entries) != 1 || detail.Entries[0].Target != filepath.Join(dir, "NEW_20240115.pdf") {
		t.Errorf("entries = %+v", detail.Entries)
	}
}

func TestRename_IfMatchMismatch(t *testing.T) {
	dir, router := testEnv(t, "", "stmt20240115.pdf")

	w := do(t, router, http.MethodPost, "/rename", renameBody(t, dir), "If-Match", `"stale"`)
	if w.Code != http.StatusConflict {
		t.Fatalf("stale If-Match = %d, want 409", w.Code)
	}
	if _, err := os.Stat(filepath.Join(dir, "stmt20240115.pdf")); err != nil {
		t.Errorf("conflict touched source: %v", err)
	}
}

func TestRename_ClientGone(t *testing.T) {
	dir, router := testEnv(t, "", "stmt20240115.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/rename", bytes.NewReader(renameBody(t, dir))).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != statusClientClosedRequest {
		t.Fatalf("cancelled rename = %d, want %d: %s", w.Code, statusClientClosedRequest, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "stmt20240115.pdf")); err != nil {
		t.Errorf("cancelled rename touched source: %v", err)
	}
}

func TestWriteError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"cancelled", fmt.Errorf("session: rename: %w", context.Canceled), statusClientClosedRequest},
		{"deadline", context.DeadlineExceeded, http.StatusRequestTimeout},
		{"validation", apperr.Validation("folder", "is required"), http.StatusBadRequest},
		{"conflict", fmt.Errorf("plan changed: %w", apperr.ErrConflict), http.StatusConflict},
		{"not found", apperr.ErrNotFound, http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, "test", tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestPlan_Validation(t *testing.T) {
	_, router := testEnv(t, "")

	tests := []struct {
		name string
		body []byte
	}{
		{"invalid json", []byte("{")},
		{"missing layout", []byte(`{"folder":"/tmp","expected_length":12}`)},
		{"missing folder", renameBody(t, "")},
		{"folder does not exist", renameBody(t, filepath.Join(t.TempDir(), "nope"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/plan", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestPreview(t *testing.T) {
	dir, router := testEnv(t, "", "stmt20240115.pdf", "short.pdf")

	var req map[string]any
	if err := json.Unmarshal(renameBody(t, dir), &req); err != nil {
		t.Fatal(err)
	}
	req["sample"] = "stmt20240115.pdf"
	req["separator"] = "-"
	body, _ := json.Marshal(req)

	w := do(t, router, http.MethodPost, "/preview", body)
	if w.Code != http.StatusOK {
		t.Fatalf("preview = %d: %s", w.Code, w.Body.String())
	}
	var res PreviewResult
	decode(t, w, &res)
	if res.NewName != "NEW_2024-01-15.pdf" {
		t.Errorf("new name = %q", res.NewName)
	}
	if res.LengthMismatches != 1 {
		t.Errorf("length mismatches = %d, want 1", res.LengthMismatches)
	}
}

func TestUndo_Empty(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo = %d", w.Code)
	}
	var rep UndoReport
	decode(t, w, &rep)
	if rep.Status != "empty" {
		t.Errorf("status = %q, want empty", rep.Status)
	}
}

func TestBatch_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/history/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing batch = %d, want 404", w.Code)
	}
}

func TestMonths(t *testing.T) {
	dir, router := testEnv(t, "", "March 2024.pdf", "Mar 2024 copy.pdf")

	w := do(t, router, http.MethodGet, "/months?folder="+dir, nil)
	var count MonthsCountResponse
	decode(t, w, &count)
	if count.Count != 1 {
		t.Errorf("count = %d, want 1", count.Count)
	}

	body, _ := json.Marshal(MonthsRequest{Folder: dir})
	w = do(t, router, http.MethodPost, "/months", body)
	if w.Code != http.StatusOK {
		t.Fatalf("normalize = %d: %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "Mar 2024.pdf")); err != nil {
		t.Errorf("normalized file: %v", err)
	}
}

func TestMonths_MissingFolder(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/months", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("months no folder = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/undo", nil, "Authorization", "Bearer secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/undo", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/undo", nil, "Authorization", "Bearer wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/undo", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret")

	// No token → 401.
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	router := testEnvWithSSE(t, false, "")

	// SSE handler writes 200 and blocks, so cancel the context after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

// testEnvWithSSE creates a router with a dummy SSE handler to test auth on /events.
func testEnvWithSSE(t *testing.T, authEnabled bool, token string) http.Handler {
	t.Helper()

	// Minimal SSE handler stub: writes headers and blocks until context done.
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})

	return NewRouter(session.NewService(), authEnabled, token, sseHandler, "")
}
