package scanner

import (
	"context"
	"path/filepath"

	"github.com/simonhull/audiometa"
)

// DurationProber computes a file's playback length in seconds. Probing is
// best-effort; failures leave duration at 0.
type DurationProber interface {
	Probe(ctx context.Context, absPath string) (float64, error)
}

// AudiometaProber probes durations by parsing audio headers natively.
type AudiometaProber struct{}

// NewAudiometaProber creates the default prober.
func NewAudiometaProber() *AudiometaProber {
	return &AudiometaProber{}
}

// Probe opens the file, reads its technical metadata, and returns the
// duration in seconds.
func (AudiometaProber) Probe(ctx context.Context, absPath string) (float64, error) {
	file, err := audiometa.OpenContext(ctx, filepath.Clean(absPath))
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return file.Audio.Duration.Seconds(), nil
}
