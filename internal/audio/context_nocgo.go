//go:build nocgo

package audio

import (
	"errors"
	"io"
)

// Context is a stub for builds without audio support.
type Context struct{}

// NewContext always fails; playback is unavailable in nocgo builds.
func NewContext() (*Context, error) {
	return nil, errors.New("audio: playback not available in this build")
}

// NewPlayer is never reached; NewContext refuses to construct a Context.
func (c *Context) NewPlayer(io.Reader) Player {
	panic("audio: no playback support")
}
