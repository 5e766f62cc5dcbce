package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/homebase/internal/audit"
	"github.com/nerrad567/homebase/internal/home"
	"github.com/nerrad567/homebase/internal/infrastructure/config"
	"github.com/nerrad567/homebase/internal/infrastructure/database"
	"github.com/nerrad567/homebase/internal/infrastructure/logging"
	"github.com/nerrad567/homebase/internal/store"
)

// writeConfig writes a minimal config file and points HOMEBASE_CONFIG at it.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("HOMEBASE_CONFIG", path)
	return path
}

// freePort reserves and releases a local TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HOMEBASE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want loading config failure", err)
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	writeConfig(t, `
storage:
  backend: floppy
`)

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("run() error = %v, want storage.backend validation failure", err)
	}
}

func TestRun_FileBackendLifecycle(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	writeConfig(t, `
site:
  id: test-site
storage:
  backend: file
  dir: `+dataDir+`
api:
  host: 127.0.0.1
  port: `+strconv.Itoa(freePort(t))+`
mqtt:
  enabled: false
influxdb:
  enabled: false
logging:
  level: error
  format: text
  output: stdout
`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	// Let startup finish, then simulate a shutdown signal.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancellation")
	}

	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendFile, Dir: t.TempDir()}}
		st, err := openStorage(ctx, cfg)
		if err != nil {
			t.Fatalf("openStorage() error = %v", err)
		}
		defer st.close() //nolint:errcheck // no-op for files
		if _, ok := st.backend.(*store.FileBackend); !ok {
			t.Errorf("backend = %T, want *store.FileBackend", st.backend)
		}
		if st.db != nil {
			t.Error("file backend should not expose a database")
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{
			Backend: config.BackendSQLite,
			SQLite: config.DatabaseConfig{
				Path:        filepath.Join(t.TempDir(), "homebase.db"),
				WALMode:     true,
				BusyTimeout: 5,
			},
		}}
		st, err := openStorage(ctx, cfg)
		if err != nil {
			t.Fatalf("openStorage() error = %v", err)
		}
		defer st.close() //nolint:errcheck // Test cleanup
		if st.db == nil {
			t.Fatal("sqlite backend should expose its database")
		}
		if err := st.health.HealthCheck(ctx); err != nil {
			t.Errorf("HealthCheck() error = %v", err)
		}
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendS3}}
		if _, err := openStorage(ctx, cfg); err == nil {
			t.Error("openStorage() should fail without a bucket")
		}
	})
}

// Changes committed after the shutdown signal, while in-flight requests
// finish, must still reach the journal.
func TestStartJournal_WritesChangesAfterSignal(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "homebase.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	signalCtx, signal := context.WithCancel(context.Background())
	journal, err := audit.NewJournal(signalCtx, db.DB, logging.Discard())
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	stop := startJournal(journal)

	registry := home.NewRegistry(db)
	registry.SetObserver(journal)

	signal()
	user, err := home.NewUser("u1", "Ada", "ada@example.com", home.PrivilegeOwner)
	if err != nil {
		t.Fatalf("NewUser() error = %v", err)
	}
	if _, err := registry.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	stop()

	result, err := journal.List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 || result.Entries[0].Key != "u1" {
		t.Errorf("journal = %+v, want the u1 create", result)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("HOMEBASE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("HOMEBASE_CONFIG", "/etc/homebase.yaml")
	if got := getConfigPath(); got != "/etc/homebase.yaml" {
		t.Errorf("getConfigPath() = %q, want /etc/homebase.yaml", got)
	}
}
