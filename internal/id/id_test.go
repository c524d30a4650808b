package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("snd")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !strings.HasPrefix(got, "snd-") {
		t.Errorf("Generate() = %q, want snd- prefix", got)
	}
	if len(got) != len("snd-")+21 {
		t.Errorf("Generate() = %q, want 21-char nanoid after prefix", got)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := MustGenerate("ses")
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}
