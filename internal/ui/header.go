package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: file, view stack, folds and reload
// health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("sdllogs", styles.Logo)}

	path := m.snapshot.Path
	if path == "" {
		path = "no file"
	}
	parts = append(parts, bg.Render(truncateMiddle(path, max(m.width/3, 12)), styles.Text))

	if d := m.current(); d != nil {
		crumbs := make([]string, 0, len(m.docs))
		for _, doc := range m.docs {
			crumbs = append(crumbs, doc.title)
		}
		parts = append(parts, bg.Render(truncate(strings.Join(crumbs, " › "), 40), styles.AccentText))
		parts = append(parts,
			bg.Render("Line:", styles.MutedText)+bg.Spaces(1)+
				bg.Render(fmt.Sprintf("%d/%d", d.cursor+1, d.lineCount()), styles.Text))
		if s := d.folds.Summary(); s != "" {
			parts = append(parts, bg.Render("Folded:", styles.MutedText)+bg.Spaces(1)+bg.Render(s, styles.InfoText))
		}
		if d.report != nil {
			parts = append(parts, m.renderUnpairedBadge(d, styles, bg))
		}
		if d.follow {
			parts = append(parts, bg.Render("● FOLLOW", styles.SuccessText))
		}
	}

	switch {
	case m.snapshot.IsStale():
		parts = append(parts, bg.Render("STALE "+errorText(m.snapshot.LastError), styles.DangerText))
	case m.snapshot.LastError != nil:
		parts = append(parts, bg.Render("Retrying...", styles.WarningText.Bold(true)))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxHeight(1).
		Render(strings.Join(parts, sep))
}

func (m Model) renderUnpairedBadge(d *document, styles Styles, bg BgStyle) string {
	n := len(d.unpairedAt)
	switch {
	case d.report.Malformed != nil:
		return bg.Render(fmt.Sprintf("Unpaired: %d (scan stopped at malformed trace)", n), styles.WarningText)
	case n == 0:
		return bg.Render("Unpaired: 0", styles.SuccessText)
	default:
		return bg.Render(fmt.Sprintf("Unpaired: %d", n), styles.DangerText)
	}
}

// renderCommandBar renders the command hints for the current document.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	followLabel := "Follow"
	if d := m.current(); d != nil && d.follow {
		followLabel = "Pause"
	}
	commands := []cmd{
		{"Space", followLabel},
		{"/", "Search"},
		{"D/A/C/X", "Fold"},
		{"u", "Unpaired"},
		{"F", "Filter"},
		{"t", "Tree"},
		{"o", "Open"},
	}
	if len(m.docs) > 1 {
		commands = append(commands, cmd{"esc", "Back"})
	}
	commands = append(commands, cmd{"?", "More"})

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if d := m.current(); d != nil && d.search.query != "" {
		segments = append(segments, bg.Render("/"+truncate(d.search.query, 18), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return truncate(err.Error(), 60)
}
