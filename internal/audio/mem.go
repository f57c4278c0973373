package audio

import (
	"io"
	"sync"
)

// MemFactory creates players that never touch an audio device. It backs the
// nocgo build's playback path in tests and lets the cache and controller be
// exercised without a sound card.
type MemFactory struct {
	mu      sync.Mutex
	players []*MemPlayer
}

// NewMemFactory returns an empty factory.
func NewMemFactory() *MemFactory {
	return &MemFactory{}
}

// NewPlayer drains the stream into a silent player.
func (f *MemFactory) NewPlayer(r io.Reader) Player {
	data, _ := io.ReadAll(r)
	p := &MemPlayer{data: data}

	f.mu.Lock()
	f.players = append(f.players, p)
	f.mu.Unlock()
	return p
}

// Players returns every player created so far, in creation order.
func (f *MemFactory) Players() []*MemPlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*MemPlayer, len(f.players))
	copy(out, f.players)
	return out
}

// Last returns the most recently created player, or nil.
func (f *MemFactory) Last() *MemPlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.players) == 0 {
		return nil
	}
	return f.players[len(f.players)-1]
}

// MemPlayer simulates playback of a fully buffered PCM stream.
type MemPlayer struct {
	mu      sync.Mutex
	data    []byte
	playing bool
	closed  bool
}

func (p *MemPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.playing = true
	}
}

func (p *MemPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *MemPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *MemPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.closed = true
	return nil
}

// Finish simulates the stream reaching its natural end.
func (p *MemPlayer) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// Closed reports whether the player has been closed.
func (p *MemPlayer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Len reports the size of the buffered stream, which tests use to verify
// time-stretched playback.
func (p *MemPlayer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.data)
}
