package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/history"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("cortex_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func testEntry(sessionID, queryID string, success bool) *history.Entry {
	return &history.Entry{
		ID:        queryID,
		SessionID: sessionID,
		Query:     "total revenue per toll",
		Response: api.AnalysisResponse{
			Result:     "Total revenue is 3680.75",
			Confidence: 0.9,
			Metadata:   api.ResponseMetadata{Script: "result = total;"},
			TimeTaken:  1.25,
			Attempts:   1,
			Success:    success,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestRecordAndGet(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	entry := testEntry("sess_abc", "query_one", true)
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, "query_one")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SessionID != "sess_abc" {
		t.Errorf("session = %q", got.SessionID)
	}
	if got.Response.Result != entry.Response.Result {
		t.Errorf("result = %q", got.Response.Result)
	}
	if got.Response.Confidence != 0.9 {
		t.Errorf("confidence = %v", got.Response.Confidence)
	}
}

func TestGetUnknownID(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.Get(context.Background(), "query_missing")
	if !errors.Is(err, history.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"query_a", "query_b", "query_c"} {
		e := testEntry("sess_list", id, i%2 == 0)
		e.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}
	// A different session must not leak into the listing.
	if err := store.Record(ctx, testEntry("sess_other", "query_x", true)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.List(ctx, "sess_list", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].ID != "query_c" || entries[1].ID != "query_b" {
		t.Errorf("order = %s, %s", entries[0].ID, entries[1].ID)
	}
}
