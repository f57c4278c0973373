package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/reflow/wordwrap"
	te "github.com/muesli/termenv"

	"github.com/kotobacli/kotoba/internal/dict"
)

// entryMarkdown builds the detail document for one entry.
func entryMarkdown(e dict.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s（%s）\n\n", e.Japanese, e.Reading)
	fmt.Fprintf(&b, "*%s*\n\n", e.Romaji)
	fmt.Fprintf(&b, "%s\n", e.EnglishDefinition)

	if e.ExampleJapanese != "" {
		b.WriteString("\n## Example\n\n")
		fmt.Fprintf(&b, "> %s\n>\n", e.ExampleJapanese)
		if e.ExampleReading != "" {
			fmt.Fprintf(&b, "> %s\n>\n", e.ExampleReading)
		}
		fmt.Fprintf(&b, "> %s\n", e.ExampleEnglish)
	}

	var notes []string
	if e.JLPT != "" {
		notes = append(notes, "**JLPT:** "+e.JLPT)
	}
	if e.PartOfSpeech != "" {
		notes = append(notes, "**Part of speech:** "+e.PartOfSpeech)
	}
	if len(notes) > 0 {
		b.WriteString("\n" + strings.Join(notes, " · ") + "\n")
	}
	if e.GrammarNote != "" {
		b.WriteString("\n" + e.GrammarNote + "\n")
	}

	return b.String()
}

// renderDetail renders the entry document, through glamour when enabled and
// as plainly wrapped text otherwise.
func (m *model) renderDetail(e dict.Entry) string {
	md := entryMarkdown(e)

	width := int(m.cfg.GlamourMaxWidth)
	if width == 0 || (m.width > 0 && m.width < width) {
		width = m.width
	}
	if width == 0 {
		width = 80
	}

	if !m.cfg.GlamourEnabled {
		return wordwrap.String(md, width)
	}

	style := m.cfg.GlamourStyle
	if style == "" || style == styles.AutoStyle {
		if te.HasDarkBackground() {
			style = styles.DarkStyle
		} else {
			style = styles.LightStyle
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wordwrap.String(md, width)
	}
	out, err := r.Render(md)
	if err != nil {
		return wordwrap.String(md, width)
	}
	return out
}

func (m *model) openDetail(e dict.Entry) {
	m.detailID = e.ID
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = defaultHeight - 2
	}
	m.viewport.SetContent(m.renderDetail(e))
	m.viewport.GotoTop()
	m.state = stateDetail
}

func (m *model) detailView() string {
	footer := subtleStyle.Render("esc back · p play · o stop · l loop · s slow · q quit")
	return m.viewport.View() + "\n" + footer
}
