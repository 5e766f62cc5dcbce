package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/nerrad567/homebase/internal/audit"
	"github.com/nerrad567/homebase/internal/events"
	"github.com/nerrad567/homebase/internal/infrastructure/database"
	"github.com/nerrad567/homebase/internal/infrastructure/logging"
)

func TestChanges_Unavailable(t *testing.T) {
	srv, _ := testServer(t, nil)

	rec := do(t, srv.Handler(), http.MethodGet, "/changes", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != ErrCodeUnavailable {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeUnavailable)
	}
}

func TestChanges_Journal(t *testing.T) {
	srv, _ := testServer(t, nil)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "hb.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	journal, err := audit.NewJournal(context.Background(), db.DB, logging.Discard())
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	srv.journal = journal
	srv.registry.SetObserver(events.Fanout{srv.Hub(), journal})

	h := srv.Handler()
	if rec := do(t, h, http.MethodPost, "/users", userJSON); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodDelete, "/users/u1", ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	journal.Run(ctx)

	rec := do(t, h, http.MethodGet, "/changes?collection=users&op=created", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var result audit.ListResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if result.Total != 1 || result.Entries[0].Key != "u1" || result.Entries[0].Op != "created" {
		t.Errorf("result = %+v, want one users/created entry for u1", result)
	}

	for _, q := range []string{"limit=x", "offset=y"} {
		if rec := do(t, h, http.MethodGet, "/changes?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("GET /changes?%s status = %d, want 400", q, rec.Code)
		}
	}
}
