package core

import "testing"

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("generated ID is empty")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID("0190a1b2-0000-7000-8000-000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "0190a1b2-0000-7000-8000-000000000001" {
		t.Errorf("round trip changed the value: %s", id)
	}

	if _, err := ParseRunID("  "); err == nil {
		t.Errorf("expected an error for a blank run ID")
	}
	if _, err := ParseProjectID(""); err == nil {
		t.Errorf("expected an error for an empty project ID")
	}
}
