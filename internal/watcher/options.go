package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the file watcher.
type Options struct {
	// SettleDelay is how long a file must be stable (no size or mtime
	// change) before an event is emitted. Copies into the folder can take
	// a while; emitting early would surface half-written files.
	SettleDelay time.Duration

	// IgnorePatterns are glob patterns matched against the base name.
	IgnorePatterns []string
}

// setDefaults fills in zero-valued options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			"*.tmp",
			"*.part",
			"*.crdownload",
		}
	}
}

// shouldIgnore reports whether a path matches any ignore pattern.
// Hidden files are always ignored.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range o.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
