package audio

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// ErrReleased is returned when starting playback on a released handle.
var ErrReleased = errors.New("audio: handle released")

// Handle is a process-local, revocable reference to one entry's decoded
// audio. It is derived when audio materializes or rehydrates and must be
// released exactly when its entry is deleted or the cache shuts down; it is
// never persisted.
type Handle struct {
	mu       sync.Mutex
	factory  Factory
	pcm      []byte
	player   Player
	released bool
}

// NewHandle wraps raw PCM16LE audio in the package format.
func NewHandle(factory Factory, pcm []byte) *Handle {
	return &Handle{factory: factory, pcm: pcm}
}

// Start begins playback from the beginning at the given rate (1.0 is
// natural speed; lower is slower). Any playback already running on this
// handle is stopped first, so a handle drives at most one player at a time.
func (h *Handle) Start(rate float64) (Player, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil, ErrReleased
	}
	if h.player != nil {
		h.player.Close()
		h.player = nil
	}

	data := h.pcm
	if rate > 0 && rate != 1.0 {
		data = Stretch(data, rate)
	}

	p := h.factory.NewPlayer(bytes.NewReader(data))
	h.player = p
	p.Play()
	return p, nil
}

// Stop closes the active player, if any. The handle remains usable.
func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.player != nil {
		h.player.Close()
		h.player = nil
	}
}

// Release stops playback and revokes the handle. Idempotent; a released
// handle frees its audio data and can never play again.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return
	}
	if h.player != nil {
		h.player.Close()
		h.player = nil
	}
	h.pcm = nil
	h.released = true
}

// Released reports whether the handle has been revoked.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Duration reports the natural-speed playing time.
func (h *Handle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return duration(len(h.pcm))
}
