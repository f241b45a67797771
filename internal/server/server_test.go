package server_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"filelink/internal/api"
	"filelink/internal/config"
	"filelink/internal/history"
	"filelink/internal/logging"
	"filelink/internal/queue"
	"filelink/internal/server"
	"filelink/internal/testsupport"
	"filelink/internal/transport"
)

func newServer(t *testing.T, mutate ...testsupport.ConfigOption) (*server.Server, *queue.Store, *history.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, mutate...)
	store := queue.NewStore()
	ledger, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })
	return server.New(cfg, store, ledger, logging.NewNop()), store, ledger
}

func TestRootReportsServerWorking(t *testing.T) {
	srv, _, _ := newServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "Server working" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRootRejectsOtherPaths(t *testing.T) {
	srv, _, _ := newServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestFilesRouteDisabledByDefault(t *testing.T) {
	srv, _, _ := newServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/files/x.txt", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404 when files route is off", rec.Code)
	}
}

func TestFilesRouteServesStoredFile(t *testing.T) {
	storage := t.TempDir()
	if err := os.WriteFile(filepath.Join(storage, "Ab1Cd_notes.txt"), []byte("contents"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	srv, _, _ := newServer(t, testsupport.WithStorageDir(storage), enableFiles())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/files/Ab1Cd_notes.txt", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "contents" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct == "" {
		t.Fatal("missing content type")
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Ab1Cd_notes.txt"` {
		t.Fatalf("content disposition = %q", cd)
	}
}

func TestFilesRouteRejectsTraversal(t *testing.T) {
	srv, _, _ := newServer(t, enableFiles())
	for _, target := range []string{"/files/../secret", "/files/a%2Fb", "/files/"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
		if rec.Code != 404 && rec.Code != 301 {
			t.Fatalf("GET %s status = %d, want rejection", target, rec.Code)
		}
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, store, ledger := newServer(t)
	store.Enqueue(queue.NewJob(transport.MessageRef{ChatID: 1}, transport.MessageRef{ChatID: 1, MessageID: 2}, queue.FileSource("doc-1", "a.txt")))
	entry := history.Entry{JobID: "job-1", SourceKind: "file", Status: history.OutcomeCompleted}
	if err := ledger.Record(context.Background(), &entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload api.DaemonStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Running || payload.QueueLength != 1 || payload.Completed != 1 {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.PID != os.Getpid() {
		t.Fatalf("pid = %d", payload.PID)
	}
}

func TestQueueEndpointListsJobsInOrder(t *testing.T) {
	srv, store, _ := newServer(t)
	first := queue.NewJob(transport.MessageRef{ChatID: 1}, transport.MessageRef{ChatID: 1, MessageID: 10}, queue.FileSource("doc-1", "a.txt"))
	second := queue.NewJob(transport.MessageRef{ChatID: 2}, transport.MessageRef{ChatID: 2, MessageID: 20}, queue.URLSource("https://example.com/b.bin"))
	store.Enqueue(first)
	store.Enqueue(second)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/queue", nil))
	var payload api.QueueListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("items = %d", len(payload.Items))
	}
	if payload.Items[0].ID != first.ID || payload.Items[0].Position != 1 {
		t.Fatalf("head item = %+v", payload.Items[0])
	}
	if payload.Items[1].URL != "https://example.com/b.bin" || payload.Items[1].Source != "url" {
		t.Fatalf("second item = %+v", payload.Items[1])
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv, _, ledger := newServer(t)
	entry := history.Entry{
		JobID:      "job-1",
		SourceKind: "file",
		FileName:   "Ab1Cd_a.txt",
		Link:       "http://files.test/Ab1Cd_a.txt",
		SizeBytes:  9,
		Status:     history.OutcomeCompleted,
	}
	if err := ledger.Record(context.Background(), &entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/history?limit=5", nil))
	var payload api.HistoryListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Entries) != 1 {
		t.Fatalf("entries = %d", len(payload.Entries))
	}
	got := payload.Entries[0]
	if got.JobID != "job-1" || got.Link == "" || got.Status != "completed" {
		t.Fatalf("entry = %+v", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/queue", nil))
	if rec.Code != 405 {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func enableFiles() testsupport.ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.EnableFilesRoute = true
	}
}
