package ident

import (
	"strings"
	"testing"
)

func TestRandomGenerator(t *testing.T) {
	gen := NewRandom()

	id := gen.NewID(10)
	if len(id) != 10 {
		t.Fatalf("expected length 10, got %d", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune(alphanumeric, c) {
			t.Errorf("id contains character outside the alphanumeric set: %q", c)
		}
	}

	if gen.NewID(0) != "" {
		t.Error("expected empty id for zero length")
	}

	// Collisions across a handful of draws would indicate a broken source.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.NewID(20)
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequence(t *testing.T) {
	seq := &Sequence{Prefix: "OP"}

	first := seq.NewID(10)
	second := seq.NewID(10)

	if first != "0000000OP1" {
		t.Errorf("expected 0000000OP1, got %s", first)
	}
	if second != "0000000OP2" {
		t.Errorf("expected 0000000OP2, got %s", second)
	}
	if len(first) != 10 || len(second) != 10 {
		t.Errorf("expected zero-padded length 10, got %d and %d", len(first), len(second))
	}
}
