package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sdllogs/sdllogs/internal/fold"
)

const gutterWidth = 8 // "%5d │ "

// initSearchInput prepares the inline search prompt.
func (m *Model) initSearchInput() {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/"
	ti.CharLimit = 100
	m.searchInput = ti
}

// initViewport sizes the frame the current document is drawn in.
// Box height = m.height - 3 (header, cmdbar, status bar below)
// Box inner = box height - 2 (top and bottom borders) = m.height - 5
func (m *Model) initViewport() {
	m.viewport = viewport.New(max(m.width-4, 1), max(m.height-5, 1))
	m.viewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
}

func (m Model) pageSize() int {
	return max(m.height-5, 1)
}

// renderDocument renders the current document inside its box with the
// status bar below it.
func (m Model) renderDocument() string {
	d := m.current()
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()

	vp := m.viewport
	vp.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	vp.SetContent(m.renderLines(d))
	box := renderBox(vp.View(), m.width, m.height-3, m.theme.BorderFocus)

	return box + "\n" + m.renderStatus(d, styles, bg)
}

// renderLines draws the visible window of d. Only the lines on screen are
// styled, so large logs cost the same as small ones.
func (m Model) renderLines(d *document) string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.viewport.Width
	height := m.viewport.Height

	if d == nil || d.lineCount() == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	matchSet := make(map[int]bool, len(d.search.matches))
	for _, idx := range d.search.matches {
		matchSet[idx] = true
	}
	activeMatch := -1
	if len(d.search.matches) > 0 && d.search.idx < len(d.search.matches) {
		activeMatch = d.search.matches[d.search.idx]
	}

	top := d.top
	end := min(top+height, d.lineCount())
	textWidth := max(width-gutterWidth, 1)

	var b strings.Builder
	for i := top; i < end; i++ {
		text := truncate(strings.ReplaceAll(d.displayLine(i), "\t", "    "), textWidth)
		gutter := fmt.Sprintf("%5d │ ", i+1)

		var line string
		switch {
		case i == d.cursor:
			sel := NewBgStyle(m.theme.SelectionBg)
			line = sel.FillLine(sel.Render(gutter+text, styles.Selected), width)
		case d.unpaired[i]:
			line = bg.Render(gutter, styles.DangerText) + styles.Unpaired.Render(text)
		case i == activeMatch:
			line = bg.Render(gutter, styles.WarningText) + styles.ActiveMatch.Render(text)
		case matchSet[i]:
			line = bg.Render(gutter, styles.AccentText) + bg.Render(text, styles.Match)
		default:
			line = bg.Render(gutter, styles.FaintText) + bg.Render(text, m.lineStyle(d.buf.LineText(i), styles))
		}
		b.WriteString(bg.FillLine(line, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// lineStyle colours Enter and Exit traces.
func (m Model) lineStyle(raw string, styles Styles) lipgloss.Style {
	if re := m.set.ThreadEnter(); re != nil && re.MatchString(raw) {
		return styles.Enter
	}
	if re := m.set.ThreadExit(); re != nil && re.MatchString(raw) {
		return styles.Exit
	}
	return styles.Text
}

// renderStatus renders the bar under the document box.
func (m Model) renderStatus(d *document, styles Styles, bg BgStyle) string {
	if m.searchActive {
		return m.searchInput.View()
	}
	if m.flash != "" {
		style := styles.InfoText
		if m.flashErr {
			style = styles.DangerText
		}
		return bg.Render(truncate(m.flash, max(m.width-2, 1)), style)
	}
	if d == nil {
		return ""
	}

	if d.search.re != nil && len(d.search.matches) > 0 {
		return bg.Render(fmt.Sprintf("/%s", d.search.query), styles.AccentText) +
			bg.Render(" - ", styles.FaintText) +
			bg.Render(fmt.Sprintf("%d/%d", d.search.idx+1, len(d.search.matches)), styles.WarningText) +
			bg.Render(" - Press ", styles.FaintText) +
			bg.Render("n", styles.AccentText) +
			bg.Render(" for next, ", styles.FaintText) +
			bg.Render("N", styles.AccentText) +
			bg.Render(" for previous, ", styles.FaintText) +
			bg.Render("Esc", styles.AccentText) +
			bg.Render(" to clear", styles.FaintText)
	}
	if d.search.re != nil {
		return bg.Render("Pattern not found: "+d.search.query, styles.DangerText)
	}

	follow := "off"
	if d.follow {
		follow = "on"
	}
	parts := []string{
		bg.Render(fmt.Sprintf("%s %d lines follow %s", d.kind, d.lineCount(), follow), styles.FaintText),
	}
	if d.report != nil && len(d.unpairedAt) > 0 {
		parts = append(parts, bg.Render(
			fmt.Sprintf("unpaired %d/%d", d.unpairedIdx+1, len(d.unpairedAt)), styles.DangerText))
	}
	sep := bg.Spaces(1) + bg.Render("•", styles.FaintText) + bg.Spaces(1)
	return strings.Join(parts, sep)
}

// handleDocumentKey processes keyboard input for the current document.
func (m Model) handleDocumentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.current()
	if d == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		d.follow = !d.follow
		if d.follow {
			d.cursor = d.lastLine()
		}

	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		d.nextMatch(1)

	case key.Matches(msg, m.keys.PrevMatch):
		d.nextMatch(-1)

	case key.Matches(msg, m.keys.FoldDate):
		m.toggleFold(d, fold.DateTime)

	case key.Matches(msg, m.keys.FoldThread):
		m.toggleFold(d, fold.ThreadAddress)

	case key.Matches(msg, m.keys.FoldComponent):
		m.toggleFold(d, fold.Component)

	case key.Matches(msg, m.keys.FoldPath):
		m.toggleFold(d, fold.ExtraPath)

	case key.Matches(msg, m.keys.Unpaired):
		m.findUnpaired(d)

	case key.Matches(msg, m.keys.NextUnpaired):
		if !d.nextUnpaired(1) {
			m.setFlash("No unpaired calls (press u to scan)", false)
		}

	case key.Matches(msg, m.keys.PrevUnpaired):
		if !d.nextUnpaired(-1) {
			m.setFlash("No unpaired calls (press u to scan)", false)
		}

	case key.Matches(msg, m.keys.Filter):
		m.modal = newPromptModal("Filter lines", "Regular expression; matching lines open in a new view", "pattern",
			func(value string) tea.Msg { return filterMsg{pattern: value} })

	case key.Matches(msg, m.keys.CallTree):
		m.openCallTree(d)

	case key.Matches(msg, m.keys.OpenSource):
		return m, m.openSource(d)

	case key.Matches(msg, m.keys.Top):
		d.cursor = 0
		d.follow = false

	case key.Matches(msg, m.keys.Bottom):
		d.cursor = d.lastLine()
		d.follow = true

	case key.Matches(msg, m.keys.Down):
		d.moveCursor(1)

	case key.Matches(msg, m.keys.Up):
		d.follow = false
		d.moveCursor(-1)

	case key.Matches(msg, m.keys.HalfPageDown):
		d.moveCursor(m.pageSize() / 2)

	case key.Matches(msg, m.keys.HalfPageUp):
		d.follow = false
		d.moveCursor(-m.pageSize() / 2)

	case key.Matches(msg, m.keys.PageDown):
		d.moveCursor(m.pageSize())

	case key.Matches(msg, m.keys.PageUp):
		d.follow = false
		d.moveCursor(-m.pageSize())
	}

	d.scrollTo(m.pageSize())
	return m, nil
}

// handleSearchInput handles keyboard input while the search prompt is open.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.current()
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.searchInput.Value()
		if d != nil {
			if err := d.setSearch(query); err != nil {
				// Invalid regex - stay in search mode
				m.setFlash(err.Error(), true)
				return m, nil
			}
			d.scrollTo(m.pageSize())
		}
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.searchActive = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}
