package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"github.com/kotobacli/kotoba/internal/audio"
	"github.com/kotobacli/kotoba/internal/dict"
)

const (
	ellipsis      = "…"
	japaneseCol   = 14
	readingCol    = 16
	minListWidth  = 40
	chromeHeight  = 6 // title, input, blank lines, status bar
	defaultHeight = 24
)

// entrySource adapts the entry snapshot for fuzzy matching across every
// text field a user might remember an entry by.
type entrySource []dict.Entry

func (s entrySource) String(i int) string {
	e := s[i]
	return strings.Join([]string{
		e.Japanese, e.Reading, e.Romaji, e.EnglishDefinition, e.OriginalInput,
	}, " ")
}

func (s entrySource) Len() int { return len(s) }

// applyFilter recomputes the visible index list from the filter query.
// An empty query shows everything in cache order.
func (m *model) applyFilter() {
	q := strings.TrimSpace(m.filterInput.Value())
	if q == "" {
		m.visible = make([]int, len(m.entries))
		for i := range m.entries {
			m.visible[i] = i
		}
	} else {
		matches := fuzzy.FindFrom(q, entrySource(m.entries))
		m.visible = make([]int, len(matches))
		for i, match := range matches {
			m.visible[i] = match.Index
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the entry under the cursor.
func (m *model) selected() (dict.Entry, bool) {
	if len(m.visible) == 0 || m.cursor >= len(m.visible) {
		return dict.Entry{}, false
	}
	return m.entries[m.visible[m.cursor]], true
}

func (m *model) listView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("言葉 kotoba"))
	b.WriteString("\n\n")

	if m.busy {
		b.WriteString(m.spin.View() + " " + m.input.View())
	} else {
		b.WriteString("  " + m.input.View())
	}
	b.WriteString("\n\n")

	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString(filterPromptStyle.Render("filter: ") + m.filterInput.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		if len(m.entries) == 0 {
			b.WriteString(subtleStyle.Render("  No entries yet. Type a word and press enter."))
		} else {
			b.WriteString(subtleStyle.Render("  Nothing matches the filter."))
		}
		b.WriteString("\n")
	} else {
		top, bottom := m.listWindow()
		for row := top; row < bottom; row++ {
			b.WriteString(m.renderRow(row))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

// listWindow keeps the cursor inside the rows that fit on screen.
func (m *model) listWindow() (int, int) {
	height := m.height
	if height == 0 {
		height = defaultHeight
	}
	rows := height - chromeHeight
	if m.filtering || m.filterInput.Value() != "" {
		rows -= 2
	}
	if rows < 1 {
		rows = 1
	}
	if len(m.visible) <= rows {
		return 0, len(m.visible)
	}
	top := m.cursor - rows/2
	if top < 0 {
		top = 0
	}
	if top+rows > len(m.visible) {
		top = len(m.visible) - rows
	}
	return top, top + rows
}

func (m *model) renderRow(row int) string {
	e := m.entries[m.visible[row]]

	glyph := m.stateGlyph(e)
	jp := padToWidth(e.Japanese, japaneseCol)
	reading := readingStyle.Render(padToWidth(e.Reading, readingCol))

	width := m.width
	if width < minListWidth {
		width = minListWidth
	}
	defWidth := width - japaneseCol - readingCol - 8
	if defWidth < 8 {
		defWidth = 8
	}
	def := truncate.StringWithTail(e.EnglishDefinition, uint(defWidth), ellipsis)

	line := fmt.Sprintf("%s %s %s %s", glyph, jp, reading, def)
	if row == m.cursor && m.focus == focusList {
		return selectedStyle.Render("▸ ") + line
	}
	return "  " + line
}

// stateGlyph reflects both the audio lifecycle and live playback.
func (m *model) stateGlyph(e dict.Entry) string {
	if pb, ok := m.playbacks[e.ID]; ok {
		switch pb.ctrl.State() {
		case audio.PlayPlaying:
			return playingGlyphStyle.Render("▶")
		case audio.PlayLoading:
			return pendingGlyphStyle.Render("◌")
		}
	}
	if e.AudioState == dict.AudioReady {
		return readyGlyphStyle.Render("♪")
	}
	return pendingGlyphStyle.Render("·")
}

func (m *model) statusBar() string {
	parts := []string{
		fmt.Sprintf("%d entries", len(m.entries)),
		humanize.Bytes(uint64(m.cache.AudioFootprint())) + " audio",
	}
	if e, ok := m.selected(); ok {
		if pb, found := m.playbacks[e.ID]; found {
			if pb.ctrl.Looping() {
				parts = append(parts, "loop")
			}
			if pb.ctrl.Slow() {
				parts = append(parts, "slow")
			}
		}
	}
	bar := statusBarStyle.Render(strings.Join(parts, " · "))
	if m.status != "" {
		bar += "  " + statusNoteStyle.Render(m.status)
	}
	return bar
}

// padToWidth pads with spaces so double-width runes still line up.
func padToWidth(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return truncate.StringWithTail(s, uint(width), ellipsis)
	}
	return s + strings.Repeat(" ", width-w)
}
