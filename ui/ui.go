// Package ui provides the terminal interface: a lookup prompt, the cached
// entry list with live audio state, a glamour-rendered detail pane, and the
// playback keybindings. It talks to the entry cache only through its public
// boundary and learns about background changes via pumped messages.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/kotobacli/kotoba/internal/audio"
	"github.com/kotobacli/kotoba/internal/cache"
	"github.com/kotobacli/kotoba/internal/dict"
)

// state is the top-level application state.
type state int

const (
	stateList state = iota
	stateDetail
)

func (s state) String() string {
	return map[state]string{
		stateList:   "showing entry list",
		stateDetail: "showing entry detail",
	}[s]
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// notifier bridges goroutines outside the program (cache callbacks, playback
// monitors) into the Bubble Tea message loop. The send hook is attached once
// the program exists.
type notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (n *notifier) attach(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

func (n *notifier) post(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// playback pairs an entry's controller with whether its handle has been
// attached yet.
type playback struct {
	ctrl      *audio.Controller
	hasHandle bool
}

type model struct {
	cfg      Config
	cache    *cache.Cache
	notifier *notifier

	state state
	focus focusArea

	input       textinput.Model
	filterInput textinput.Model
	filtering   bool
	spin        spinner.Model

	entries []dict.Entry
	visible []int
	cursor  int

	playbacks map[string]*playback

	viewport viewport.Model
	detailID string

	width  int
	height int

	busy   bool // a lookup is in flight
	status string
	err    error

	fatalErr error
}

// NewProgram returns a new Tea program wired to the entry cache. Change
// notifications from the cache and from playback controllers are pumped into
// the program as messages.
func NewProgram(cfg Config, c *cache.Cache) *tea.Program {
	log.Debug("starting kotoba UI", "glamour", cfg.GlamourEnabled, "voice", cfg.Voice)

	m := newModel(cfg, c)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	m.notifier.attach(p.Send)
	c.SetOnChange(func() { m.notifier.post(cacheChangedMsg{}) })
	return p
}

func newModel(cfg Config, c *cache.Cache) *model {
	input := textinput.New()
	input.Placeholder = "word or phrase"
	input.Prompt = "検索 › "
	input.CharLimit = 120
	input.Focus()

	filter := textinput.New()
	filter.Prompt = ""
	filter.CharLimit = 80

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		cfg:         cfg,
		cache:       c,
		notifier:    &notifier{},
		input:       input,
		filterInput: filter,
		spin:        spin,
		playbacks:   make(map[string]*playback),
	}
	m.refreshEntries()
	return m
}

// refreshEntries re-snapshots the cache and reconciles playback controllers:
// removed entries lose their controller, freshly ready entries get their
// handle attached.
func (m *model) refreshEntries() {
	m.entries = m.cache.Entries()

	alive := make(map[string]dict.Entry, len(m.entries))
	for _, e := range m.entries {
		alive[e.ID] = e
	}
	for id, pb := range m.playbacks {
		e, ok := alive[id]
		if !ok {
			pb.ctrl.Stop()
			delete(m.playbacks, id)
			continue
		}
		if !pb.hasHandle && e.AudioState == dict.AudioReady && e.Handle != nil {
			pb.hasHandle = true
			pb.ctrl.HandleReady(e.Handle)
		}
	}

	m.applyFilter()
}

// playbackFor returns the entry's controller, creating it on first use.
func (m *model) playbackFor(e dict.Entry) *playback {
	if pb, ok := m.playbacks[e.ID]; ok {
		return pb
	}

	id := e.ID
	ctrl := audio.NewController(
		time.Duration(m.cfg.LoopDelayMillis)*time.Millisecond,
		m.cfg.SlowRate,
		func() { m.cache.RequestPlayback(id) },
	)
	ctrl.SetOnChange(func() { m.notifier.post(playbackChangedMsg{}) })

	pb := &playback{ctrl: ctrl}
	if e.AudioState == dict.AudioReady && e.Handle != nil {
		pb.hasHandle = true
		ctrl.HandleReady(e.Handle)
	}
	m.playbacks[e.ID] = pb
	return pb
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been a fatal error, any key exits.
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state == stateDetail {
			return m.updateDetailKeys(msg)
		}
		if m.filtering {
			return m.updateFilterKeys(msg)
		}
		if m.focus == focusInput {
			return m.updateInputKeys(msg)
		}
		return m.updateListKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 12
		if m.state == stateDetail {
			if e, ok := m.entryByID(m.detailID); ok {
				m.openDetail(e)
			}
		}

	case cacheChangedMsg:
		m.refreshEntries()
		if m.state == stateDetail {
			if _, ok := m.entryByID(m.detailID); !ok {
				m.state = stateList
			}
		}

	case playbackChangedMsg:
		// Controller state is read live at render time; the message only
		// forces a redraw.

	case lookupResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			log.Error("lookup failed", "err", msg.err)
			cmds = append(cmds, clearStatusAfter(statusMessageTimeout))
		} else {
			m.err = nil
			m.input.Reset()
			m.refreshEntries()
			m.cursor = 0
		}

	case copiedMsg:
		m.status = "copied " + msg.label
		cmds = append(cmds, clearStatusAfter(statusMessageTimeout))

	case statusTimeoutMsg:
		m.status = ""
		m.err = nil

	case errMsg:
		m.err = msg.err
		cmds = append(cmds, clearStatusAfter(statusMessageTimeout))

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, lookupCmd(m.cache, text))

	case "esc", "tab", "down":
		if len(m.visible) > 0 {
			m.focus = focusList
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) updateFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.Reset()
		m.applyFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *model) updateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "i", "tab":
		m.focus = focusInput
		m.input.Focus()
		return m, textinput.Blink

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.focus = focusInput
			m.input.Focus()
			return m, textinput.Blink
		}

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "enter":
		if e, ok := m.selected(); ok {
			m.openDetail(e)
		}

	case "/":
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case "p":
		if e, ok := m.selected(); ok {
			m.playbackFor(e).ctrl.Play()
		}

	case "o":
		if e, ok := m.selected(); ok {
			if pb, found := m.playbacks[e.ID]; found {
				pb.ctrl.Stop()
			}
		}

	case "l":
		if e, ok := m.selected(); ok {
			m.playbackFor(e).ctrl.ToggleLoop()
		}

	case "s":
		if e, ok := m.selected(); ok {
			m.playbackFor(e).ctrl.ToggleSlow()
		}

	case "d":
		if e, ok := m.selected(); ok {
			m.deleteEntry(e)
		}

	case "c":
		if e, ok := m.selected(); ok {
			return m, copyToClipboard(e.Japanese, e.Japanese)
		}

	case "C":
		if e, ok := m.selected(); ok {
			return m, copyToClipboard(e.Romaji, e.Romaji)
		}
	}

	return m, nil
}

func (m *model) updateDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc", "h", "backspace":
		m.state = stateList
		return m, nil

	case "p":
		if e, ok := m.entryByID(m.detailID); ok {
			m.playbackFor(e).ctrl.Play()
		}
		return m, nil

	case "o":
		if pb, found := m.playbacks[m.detailID]; found {
			pb.ctrl.Stop()
		}
		return m, nil

	case "l":
		if e, ok := m.entryByID(m.detailID); ok {
			m.playbackFor(e).ctrl.ToggleLoop()
		}
		return m, nil

	case "s":
		if e, ok := m.entryByID(m.detailID); ok {
			m.playbackFor(e).ctrl.ToggleSlow()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) deleteEntry(e dict.Entry) {
	if pb, found := m.playbacks[e.ID]; found {
		pb.ctrl.Stop()
		delete(m.playbacks, e.ID)
	}
	m.cache.Delete(e.ID)
	m.refreshEntries()
}

func (m *model) entryByID(id string) (dict.Entry, bool) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, true
		}
	}
	return dict.Entry{}, false
}

func (m *model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state {
	case stateDetail:
		return m.detailView()
	default:
		view := m.listView()
		if m.err != nil {
			view += "\n" + errorTextStyle.Render(m.err.Error())
		}
		return view
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
