package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/sdllogs/sdllogs/internal/config"
	"github.com/sdllogs/sdllogs/internal/filter"
	"github.com/sdllogs/sdllogs/internal/fold"
	"github.com/sdllogs/sdllogs/internal/jump"
	"github.com/sdllogs/sdllogs/internal/logging"
	"github.com/sdllogs/sdllogs/internal/prefs"
	"github.com/sdllogs/sdllogs/internal/state"
	"github.com/sdllogs/sdllogs/internal/syntax"
	"github.com/sdllogs/sdllogs/internal/trace"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Syntax    *syntax.Set
	Config    config.Config
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	Follow    bool
	Folds     []string // fold labels applied to the main document
	Logger    *logrus.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	set       *syntax.Set
	cfg       config.Config
	prefsPath string
	pollTick  time.Duration
	log       *logrus.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	viewport viewport.Model

	// Data state
	snapshot    state.Snapshot
	version     int
	lastUpdated time.Time

	// Document stack; docs[0] follows the store
	docs []*document

	// Inline search prompt
	searchActive bool
	searchInput  textinput.Model

	// Help overlay
	showHelp bool

	// Active modal (filter prompt)
	modal Modal

	// One-shot message in the status bar
	flash    string
	flashErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	set := opts.Syntax
	if set == nil {
		set = syntax.Default()
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	root := newDocument("log", docLog, nil)
	root.follow = opts.Follow
	for _, name := range opts.Folds {
		if c, ok := fold.ByName(name); ok {
			root.folds.Set(c, true)
		}
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		set:       set,
		cfg:       opts.Config,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		log:       log,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		docs:      []*document{root},
	}
	m.initSearchInput()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.initViewport()
		m.ready = true
		if d := m.current(); d != nil {
			d.scrollTo(m.pageSize())
		}
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case filterMsg:
		m.openFilter(msg.pattern)
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("path", msg.loc.Path).Warn("editor exited with error")
			m.setFlash("editor: "+msg.err.Error(), true)
		}
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.searchActive {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	// Show help overlay if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle help overlay
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if m.searchActive {
		return m.handleSearchInput(msg)
	}

	m.flash, m.flashErr = "", false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.escape()
		return m, nil
	}

	return m.handleDocumentKey(msg)
}

// escape clears the search of the current document, or closes it when
// there is nothing to clear. The main document is never closed.
func (m *Model) escape() {
	d := m.current()
	if d == nil {
		return
	}
	if d.search.re != nil {
		d.clearSearch()
		return
	}
	if len(m.docs) > 1 {
		m.docs = m.docs[:len(m.docs)-1]
		m.current().scrollTo(m.pageSize())
	}
}

func (m Model) current() *document {
	if len(m.docs) == 0 {
		return nil
	}
	return m.docs[len(m.docs)-1]
}

// push opens d on top of the stack with the folds of the current view.
func (m *Model) push(d *document) {
	if cur := m.current(); cur != nil {
		d.folds = cur.folds
	}
	d.refreshFolds(m.set)
	m.docs = append(m.docs, d)
	d.scrollTo(m.pageSize())
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash, m.flashErr = text, isErr
}

func (m *Model) toggleFold(d *document, c fold.Category) {
	d.toggleFold(c, m.set)
	if d.search.re != nil {
		d.search.matches = d.matchLines(d.search.re)
	}
	if d == m.docs[0] {
		labels := make([]string, 0, len(fold.Categories))
		for _, active := range d.folds.Active() {
			labels = append(labels, active.String())
		}
		m.savePrefs(func(p *prefs.Prefs) { p.Folds = labels })
	}
}

func (m *Model) findUnpaired(d *document) {
	if err := d.findUnpaired(m.set); err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	switch {
	case d.report.Malformed != nil:
		m.setFlash(fmt.Sprintf("Scan stopped at malformed trace on line %d", d.buf.LineIndex(d.report.Malformed.Start)+1), true)
	case len(d.unpairedAt) == 0:
		m.setFlash("All calls are paired", false)
	default:
		m.setFlash(fmt.Sprintf("%d unpaired calls", len(d.unpairedAt)), false)
	}
	d.nextUnpaired(1)
}

func (m *Model) openFilter(pattern string) {
	d := m.current()
	if d == nil {
		return
	}
	out, err := filter.Lines(d.buf, pattern)
	if err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	m.push(newDocument("filter "+truncate(pattern, 20), docFiltered, out))
}

func (m *Model) openCallTree(d *document) {
	tag, ok := trace.ThreadTag(d.cursorText(), m.set)
	if !ok {
		m.setFlash("No thread on the cursor line", true)
		return
	}
	unit := m.cfg.IndentUnit
	if unit == "" {
		unit = trace.DefaultIndentUnit
	}
	tree, err := trace.CallTree(d.buf, tag, m.set, unit)
	if err != nil {
		m.setFlash(err.Error(), true)
		return
	}
	title := "tree " + tag
	if id, ok := trace.ThreadOf(tag, m.set); ok {
		title = "tree " + id
	}
	m.push(newDocument(title, docTree, tree))
}

// openSource resolves the cursor line's source reference and hands the
// terminal to the editor.
func (m *Model) openSource(d *document) tea.Cmd {
	ref, err := jump.ParseReference(d.cursorText(), m.cfg.SourceMarker)
	if err != nil {
		m.setFlash(err.Error(), true)
		return nil
	}
	loc, err := jump.Resolver{SourcePath: m.cfg.SourcePath}.Resolve(ref)
	if err != nil {
		m.setFlash(err.Error(), true)
		return nil
	}
	m.log.WithFields(logrus.Fields{"path": loc.Path, "line": loc.Line}).Debug("opening source")
	return tea.ExecProcess(editorCommand(loc, os.Getenv), func(err error) tea.Msg {
		return editorDoneMsg{loc: loc, err: err}
	})
}

// editorCommand builds "$EDITOR +line path". VISUAL wins over EDITOR and vi
// is the fallback.
func editorCommand(loc jump.Location, getenv func(string) string) *exec.Cmd {
	editor := getenv("VISUAL")
	if strings.TrimSpace(editor) == "" {
		editor = getenv("EDITOR")
	}
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"vi"}
	}
	args := append(fields[1:], fmt.Sprintf("+%d", loc.Line), loc.Path)
	return exec.Command(fields[0], args...)
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.log.WithError(err).Warn("save preferences")
	}
}

// handleTick handles the periodic tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// applySnapshot refreshes the main document when the store has new text.
// Derived views keep the text they were built from.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.lastUpdated = time.Now()
	if !snap.HasBuffer() || snap.Version == m.version {
		return
	}
	m.version = snap.Version
	root := m.docs[0]
	root.setBuffer(snap.Buffer, m.set)
	root.scrollTo(m.pageSize())
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: file + document state
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content
	b.WriteString(m.renderDocument())

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type filterMsg struct {
	pattern string
}

type editorDoneMsg struct {
	loc jump.Location
	err error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
