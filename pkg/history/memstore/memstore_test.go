package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/history"
)

func entry(sessionID, id string) *history.Entry {
	return &history.Entry{
		ID:        id,
		SessionID: sessionID,
		Query:     "q",
		Response:  api.AnalysisResponse{Result: "r", Success: true},
		CreatedAt: time.Now(),
	}
}

func TestRecordAndGet(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	if err := s.Record(ctx, entry("sess_a", "query_1")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Get(ctx, "query_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SessionID != "sess_a" {
		t.Errorf("session = %q", got.SessionID)
	}

	if _, err := s.Get(ctx, "query_2"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Record(ctx, entry("sess_a", fmt.Sprintf("query_%d", i)))
	}
	s.Record(ctx, entry("sess_b", "query_other"))

	got, err := s.List(ctx, "sess_a", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "query_2" || got[1].ID != "query_1" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
}

func TestCapacityEviction(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.Record(ctx, entry("sess_a", fmt.Sprintf("query_%d", i)))
	}

	if _, err := s.Get(ctx, "query_0"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("oldest entry should have been evicted, err = %v", err)
	}
	if _, err := s.Get(ctx, "query_2"); err != nil {
		t.Errorf("newest entry missing: %v", err)
	}
}
