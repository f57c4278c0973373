//go:build !nocgo

package audio

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Context wraps the process-wide oto audio device. One context serves all
// players; oto only allows a single context per process, so main constructs
// exactly one and injects it everywhere.
type Context struct {
	ctx *oto.Context
}

// NewContext opens the audio device in the synthesized speech format and
// blocks until it is ready.
func NewContext() (*Context, error) {
	options := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	// Platform-specific buffer sizing; macOS needs more headroom.
	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = 100 * time.Millisecond
	default:
		options.BufferSize = 50 * time.Millisecond
	}

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	return &Context{ctx: ctx}, nil
}

// NewPlayer creates a player for a PCM16LE stream.
func (c *Context) NewPlayer(r io.Reader) Player {
	return c.ctx.NewPlayer(r)
}
