// Package audio owns process-local audio resources: playable handles derived
// from stored payloads and the per-entry playback controller. Handles are
// explicit owned resources, released deterministically rather than left to
// the garbage collector.
package audio

import (
	"io"
	"time"
)

// Synthesized speech format: 24kHz mono signed 16-bit little-endian.
const (
	SampleRate     = 24000
	Channels       = 1
	BytesPerSample = 2
)

// Player is one playback of a PCM stream. Implementations wrap the oto
// player in production and an in-memory fake in tests.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Factory creates players for PCM16LE streams in the package format.
type Factory interface {
	NewPlayer(r io.Reader) Player
}

// duration reports the playing time of a PCM payload in the package format.
func duration(pcmLen int) time.Duration {
	frames := pcmLen / (BytesPerSample * Channels)
	return time.Duration(frames) * time.Second / SampleRate
}
