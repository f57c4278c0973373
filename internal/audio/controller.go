package audio

import (
	"sync"
	"time"
)

// PlayState is the transient playback state of one rendered entry. It lives
// outside the cache lifecycle and is never persisted.
type PlayState int

const (
	PlayStopped PlayState = iota
	// PlayLoading means playback was requested before audio materialized;
	// the controller is waiting for a handle.
	PlayLoading
	PlayPlaying
)

func (s PlayState) String() string {
	switch s {
	case PlayStopped:
		return "stopped"
	case PlayLoading:
		return "loading"
	case PlayPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// monitorInterval is how often an active playback is polled for completion.
const monitorInterval = 50 * time.Millisecond

// Controller drives playback for a single entry: play, stop, looping with a
// delayed restart, and a slowed rate for careful listening. Playback without
// a handle requests materialization and auto-starts once when the handle
// arrives; that auto-start arms exactly once for the controller's lifetime.
type Controller struct {
	mu        sync.Mutex
	state     PlayState
	looping   bool
	slow      bool
	loopDelay time.Duration
	slowRate  float64

	armed  bool
	handle *Handle
	player Player

	loopTimer *time.Timer
	gen       int // invalidates monitors and pending loop restarts

	request  func()
	onChange func()
}

// NewController builds a controller for one entry. request is invoked when
// playback needs audio that has not materialized yet; it must not block.
func NewController(loopDelay time.Duration, slowRate float64, request func()) *Controller {
	return &Controller{
		state:     PlayStopped,
		loopDelay: loopDelay,
		slowRate:  slowRate,
		armed:     true,
		request:   request,
	}
}

// SetOnChange registers a callback fired after observable state changes.
// It is called without the controller lock held.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Play starts playback from the beginning. Without a handle it enters
// Loading, requests materialization, and lets the handle's arrival start
// playback (once).
func (c *Controller) Play() {
	c.mu.Lock()
	if c.handle == nil {
		c.state = PlayLoading
		req := c.request
		c.mu.Unlock()
		c.notify()
		if req != nil {
			req()
		}
		return
	}
	c.startLocked()
	c.mu.Unlock()
	c.notify()
}

// Stop halts playback and clears any scheduled loop restart.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.cancelLoopLocked()
	c.gen++
	if c.player != nil {
		c.player.Close()
		c.player = nil
	}
	c.state = PlayStopped
	c.mu.Unlock()
	c.notify()
}

// HandleReady attaches the materialized handle. If playback is waiting and
// the one-shot auto-play is still armed, playback starts immediately; later
// handle changes never retrigger it.
func (c *Controller) HandleReady(h *Handle) {
	c.mu.Lock()
	c.handle = h
	if c.state == PlayLoading {
		if c.armed {
			c.armed = false
			c.startLocked()
		} else {
			c.state = PlayStopped
		}
	}
	c.mu.Unlock()
	c.notify()
}

// ToggleLoop flips looping and reports the new value. Turning looping off
// cancels a scheduled restart.
func (c *Controller) ToggleLoop() bool {
	c.mu.Lock()
	c.looping = !c.looping
	if !c.looping && c.cancelLoopLocked() {
		// A restart was pending; without it the playback is over.
		c.state = PlayStopped
	}
	v := c.looping
	c.mu.Unlock()
	c.notify()
	return v
}

// ToggleSlow flips the slowed rate and reports the new value. The rate
// applies from the next start, including loop restarts.
func (c *Controller) ToggleSlow() bool {
	c.mu.Lock()
	c.slow = !c.slow
	v := c.slow
	c.mu.Unlock()
	c.notify()
	return v
}

// State returns the current playback state.
func (c *Controller) State() PlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Looping reports whether looping is on.
func (c *Controller) Looping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.looping
}

// Slow reports whether the slowed rate is on.
func (c *Controller) Slow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slow
}

// startLocked begins playback on the attached handle. Callers hold c.mu.
func (c *Controller) startLocked() {
	c.cancelLoopLocked()

	rate := 1.0
	if c.slow {
		rate = c.slowRate
	}

	p, err := c.handle.Start(rate)
	if err != nil {
		// Handle was released under us (entry deleted); nothing to play.
		c.state = PlayStopped
		c.player = nil
		return
	}

	c.gen++
	c.player = p
	c.state = PlayPlaying
	go c.monitor(c.gen, p)
}

// monitor watches one playback and reports its natural end.
func (c *Controller) monitor(gen int, p Player) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		stale := gen != c.gen
		c.mu.Unlock()
		if stale {
			return
		}
		if !p.IsPlaying() {
			c.finished(gen)
			return
		}
	}
}

// finished handles natural end-of-audio: loop after the configured delay or
// come to rest.
func (c *Controller) finished(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.state != PlayPlaying {
		c.mu.Unlock()
		return
	}

	if c.player != nil {
		c.player.Close()
		c.player = nil
	}

	if c.looping {
		// Stay in Playing across the gap; Stop cancels the timer.
		c.loopTimer = time.AfterFunc(c.loopDelay, func() { c.loopRestart(gen) })
		c.mu.Unlock()
		return
	}

	c.state = PlayStopped
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) loopRestart(gen int) {
	c.mu.Lock()
	if gen != c.gen || !c.looping || c.state != PlayPlaying || c.handle == nil {
		c.mu.Unlock()
		return
	}
	c.loopTimer = nil
	c.startLocked()
	c.mu.Unlock()
	c.notify()
}

// cancelLoopLocked stops a scheduled loop restart and reports whether one
// was pending. Callers hold c.mu.
func (c *Controller) cancelLoopLocked() bool {
	if c.loopTimer == nil {
		return false
	}
	c.loopTimer.Stop()
	c.loopTimer = nil
	return true
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
