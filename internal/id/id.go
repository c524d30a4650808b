// Package id generates the prefixed identifiers used across the server:
// sound records ("snd-..."), directory sessions ("ses-...") and SSE
// clients ("sse-...").
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed NanoID, e.g. "snd-V1StGXR8_Z5jdHi6B-myT".
// The 21-character body is URL-safe, which matters here because sound
// and session IDs travel in API paths.
//
// Returns an error if the system has insufficient entropy for secure
// random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails. Used
// where a failed mint cannot be handled anyway (record synthesis during
// a scan, session construction).
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
