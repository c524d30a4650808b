// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayName derives a human-readable title from a filename: the
// directory part and extension are dropped, separators become spaces,
// and words are title-cased. "impacts/door_slam-01.wav" -> "Door Slam 01".
func DisplayName(filename string) string {
	base := path.Base(filename)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled"
	}
	return titleCaser.String(base)
}

// FileStem sanitizes a display name into a filesystem-safe stem: path
// separators and control characters are stripped, whitespace collapsed.
func FileStem(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r < 0x20:
			// skip
		default:
			b.WriteRune(r)
		}
	}
	stem := strings.Join(strings.Fields(b.String()), " ")
	if stem == "" {
		return "untitled"
	}
	return stem
}
