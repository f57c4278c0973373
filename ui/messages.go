package ui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kotobacli/kotoba/internal/cache"
	"github.com/kotobacli/kotoba/internal/dict"
)

const statusMessageTimeout = time.Second * 3

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	// cacheChangedMsg is pumped into the program whenever the entry cache's
	// observable state changes (insert, delete, audio becoming ready).
	cacheChangedMsg struct{}

	// playbackChangedMsg is pumped when any playback controller changes
	// state outside a keypress (natural end of audio, loop restart).
	playbackChangedMsg struct{}

	lookupResultMsg struct {
		entry dict.Entry
		err   error
	}

	copiedMsg struct{ label string }

	statusTimeoutMsg struct{}
)

func lookupCmd(c *cache.Cache, text string) tea.Cmd {
	return func() tea.Msg {
		e, err := c.Lookup(context.Background(), text)
		return lookupResultMsg{entry: e, err: err}
	}
}

func copyToClipboard(text, label string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errMsg{err}
		}
		return copiedMsg{label: label}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusTimeoutMsg{}
	})
}
