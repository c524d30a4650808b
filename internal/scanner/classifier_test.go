package scanner

import "testing"

func TestIsAudio(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"kick.wav", true},
		{"loop.MP3", true},
		{"impacts/door.flac", true},
		{"voice.ogg", true},
		{"old.wma", true},
		{"tune.m4a", true},
		{"tune.aac", true},
		{"soundvault.json", false},
		{"readme.txt", false},
		{"noext", false},
		{"archive.wav.zip", false},
	}

	for _, tt := range tests {
		if got := IsAudio(tt.name); got != tt.want {
			t.Errorf("IsAudio(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"audio/mpeg", ".mp3"},
		{"audio/wav", ".wav"},
		{"audio/x-wav", ".wav"},
		{"audio/ogg", ".ogg"},
		{"audio/mp4", ".m4a"},
		{"audio/flac", ".flac"},
		{"AUDIO/MPEG", ".mp3"},
		{"audio/mpeg; charset=binary", ".mp3"},
		{"application/octet-stream", ".mp3"},
		{"", ".mp3"},
	}

	for _, tt := range tests {
		if got := ExtensionForMIME(tt.mime); got != tt.want {
			t.Errorf("ExtensionForMIME(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}
