package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const helpWidth = 50

type helpSection struct {
	title string
	items []helpItem
}

// helpItem is one row of the overlay. Related bindings share a row, with
// their keys joined by "/".
type helpItem struct {
	bindings []key.Binding
	desc     string
}

func (i helpItem) keys() string {
	parts := make([]string, 0, len(i.bindings))
	for _, b := range i.bindings {
		parts = append(parts, b.Help().Key)
	}
	return strings.Join(parts, "/")
}

func row(desc string, bindings ...key.Binding) helpItem {
	return helpItem{bindings: bindings, desc: desc}
}

// helpSections orders the bindings the way a trace is usually read: find
// the broken call, cut the noise around it, then move through what is left.
func helpSections(k keyMap) []helpSection {
	return []helpSection{
		{
			title: "Calls",
			items: []helpItem{
				row(k.Unpaired.Help().Desc, k.Unpaired),
				row("Next/previous unpaired", k.NextUnpaired, k.PrevUnpaired),
				row(k.CallTree.Help().Desc, k.CallTree),
				row(k.OpenSource.Help().Desc, k.OpenSource),
			},
		},
		{
			title: "Noise",
			items: []helpItem{
				row("Fold date/thread/comp/path", k.FoldDate, k.FoldThread, k.FoldComponent, k.FoldPath),
				row(k.Filter.Help().Desc+" into a new view", k.Filter),
				row(k.Search.Help().Desc, k.Search),
				row("Next/previous match", k.NextMatch, k.PrevMatch),
			},
		},
		{
			title: "Moving",
			items: []helpItem{
				row("Line down/up", k.Down, k.Up),
				row("Top/bottom", k.Top, k.Bottom),
				row("Half page down/up", k.HalfPageDown, k.HalfPageUp),
				row("Page down/up", k.PageDown, k.PageUp),
				row(k.ToggleFollow.Help().Desc, k.ToggleFollow),
			},
		},
		{
			title: "General",
			items: []helpItem{
				row("Clear search, close view", k.Escape),
				row(k.CycleTheme.Help().Desc, k.CycleTheme),
				row(k.Help.Help().Desc, k.Help),
				row(k.Quit.Help().Desc, k.Quit),
			},
		},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(14)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n")

	for _, section := range helpSections(m.keys) {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.keys()))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
	}

	return placeModal(m.theme, m.width, m.height, strings.TrimRight(b.String(), "\n"), helpWidth)
}
