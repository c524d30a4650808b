package scanner

import (
	"path"
	"strings"
)

// Extension allow-list for supported audio assets (package-level to avoid
// allocations). Applied identically to native walks and fallback file
// sets so the two modes never diverge in what counts as a library member.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".aac":  true,
	".wma":  true,
	".flac": true,
}

// IsAudio reports whether a path or filename denotes a supported audio
// asset. Pure predicate: no I/O, no state, case-insensitive.
func IsAudio(name string) bool {
	return audioExtensions[strings.ToLower(path.Ext(name))]
}

// ExtensionForMIME maps a declared MIME type to a supported extension,
// for uploads whose name lacks one. Unknown types default to .mp3.
func ExtensionForMIME(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg", "application/ogg":
		return ".ogg"
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return ".m4a"
	case "audio/aac":
		return ".aac"
	case "audio/x-ms-wma":
		return ".wma"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	default:
		return ".mp3"
	}
}
