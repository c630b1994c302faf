package api

import (
	"strings"
	"testing"
)

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("missing prefix: %s", id)
	}
	if !ValidateSessionID(id) {
		t.Errorf("generated ID does not validate: %s", id)
	}
}

func TestNewQueryID(t *testing.T) {
	id := NewQueryID()
	if !strings.HasPrefix(id, "query_") {
		t.Errorf("missing prefix: %s", id)
	}
	if !ValidateQueryID(id) {
		t.Errorf("generated ID does not validate: %s", id)
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestValidateRejectsMalformedIDs(t *testing.T) {
	bad := []string{
		"",
		"sess_",
		"sess_short",
		"query_ABCDEFGHIJKLMNOPQRSTUVWX",
		"sess_!!!!!!!!!!!!!!!!!!!!!!!!",
		"prefix_ABCDEFGHIJKLMNOPQRSTUVWX",
	}
	for _, id := range bad {
		if ValidateSessionID(id) {
			t.Errorf("ValidateSessionID(%q) = true", id)
		}
	}
	if ValidateQueryID("sess_ABCDEFGHIJKLMNOPQRSTUVWX") {
		t.Error("query validation accepted a session ID")
	}
}
