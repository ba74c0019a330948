package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Document actions
	ToggleFollow  key.Binding
	Search        key.Binding
	NextMatch     key.Binding
	PrevMatch     key.Binding
	FoldDate      key.Binding
	FoldThread    key.Binding
	FoldComponent key.Binding
	FoldPath      key.Binding
	Unpaired      key.Binding
	NextUnpaired  key.Binding
	PrevUnpaired  key.Binding
	Filter        key.Binding
	CallTree      key.Binding
	OpenSource    key.Binding

	// Search/input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close view"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// Document actions
		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),
		FoldDate: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Fold timestamps"),
		),
		FoldThread: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Fold thread addresses"),
		),
		FoldComponent: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Fold components"),
		),
		FoldPath: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Fold path prefixes"),
		),
		Unpaired: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Find unpaired calls"),
		),
		NextUnpaired: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next unpaired call"),
		),
		PrevUnpaired: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous unpaired call"),
		),
		Filter: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Filter lines"),
		),
		CallTree: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Call tree for thread"),
		),
		OpenSource: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open source in $EDITOR"),
		),

		// Search/input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.PageUp, k.PageDown, k.HalfPageDown, k.HalfPageUp},
		// Document
		{k.ToggleFollow, k.Search, k.NextMatch, k.PrevMatch},
		{k.FoldDate, k.FoldThread, k.FoldComponent, k.FoldPath},
		{k.Unpaired, k.NextUnpaired, k.PrevUnpaired},
		{k.Filter, k.CallTree, k.OpenSource},
		// General
		{k.CycleTheme, k.Escape, k.Help, k.Quit},
	}
}

// contexts groups the bindings that are live at the same time. Confirm only
// applies while an input has focus, so it shares no context with the rest.
func (k keyMap) contexts() map[string]map[string]key.Binding {
	return map[string]map[string]key.Binding{
		"document": {
			"Quit": k.Quit, "Help": k.Help, "CycleTheme": k.CycleTheme, "Escape": k.Escape,
			"Up": k.Up, "Down": k.Down, "Top": k.Top, "Bottom": k.Bottom,
			"PageUp": k.PageUp, "PageDown": k.PageDown,
			"HalfPageUp": k.HalfPageUp, "HalfPageDown": k.HalfPageDown,
			"ToggleFollow": k.ToggleFollow, "Search": k.Search,
			"NextMatch": k.NextMatch, "PrevMatch": k.PrevMatch,
			"FoldDate": k.FoldDate, "FoldThread": k.FoldThread,
			"FoldComponent": k.FoldComponent, "FoldPath": k.FoldPath,
			"Unpaired": k.Unpaired, "NextUnpaired": k.NextUnpaired, "PrevUnpaired": k.PrevUnpaired,
			"Filter": k.Filter, "CallTree": k.CallTree, "OpenSource": k.OpenSource,
		},
		"input": {
			"Confirm": k.Confirm, "Escape": k.Escape,
		},
	}
}

// Conflicts returns one message per key bound to more than one action in
// the same context. The result is sorted.
func (k keyMap) Conflicts() []string {
	var out []string
	for ctx, bindings := range k.contexts() {
		owners := make(map[string][]string)
		for name, b := range bindings {
			for _, keyName := range b.Keys() {
				owners[keyName] = append(owners[keyName], name)
			}
		}
		for keyName, names := range owners {
			if len(names) < 2 {
				continue
			}
			sort.Strings(names)
			out = append(out, fmt.Sprintf("%s: %q bound to %s", ctx, keyName, strings.Join(names, ", ")))
		}
	}
	sort.Strings(out)
	return out
}
