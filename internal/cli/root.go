// Package cli defines the sdllogs command line: the viewer and batch
// commands that run the same analyses without a terminal UI.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sdllogs/sdllogs/internal/app"
	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/logging"
)

// Version is set at build time.
var Version = "dev"

const tuiAnnotation = "tui"

// globals holds the persistent flags and what PersistentPreRunE builds from
// them.
type globals struct {
	configPath string
	syntaxPath string
	logLevel   string
	logFile    string

	env      app.Env
	log      *logrus.Logger
	closeLog func() error
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}
	var follow bool
	var prefsPath string

	root := &cobra.Command{
		Use:   "sdllogs [FILE]",
		Short: "View and analyse SDL core trace logs",
		Long: `sdllogs opens SDL core trace logs in a terminal viewer that folds noisy
fields, finds Enter traces without a matching Exit, builds per-thread call
trees and jumps to the source line a trace came from.

The subcommands run the same analyses in batch form and print plain text.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{tuiAnnotation: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if g.closeLog != nil {
				return g.closeLog()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return g.runViewer(cmd.Context(), path, prefsPath, follow)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default ~/.config/sdllogs/config.toml)")
	pf.StringVar(&g.syntaxPath, "syntax", "", "syntax file with the trace patterns (overrides config)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFile, "log-file", "", "append logs to this file")

	root.Flags().BoolVarP(&follow, "follow", "f", false, "keep the cursor on the last line as the file grows")
	root.Flags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/sdllogs/prefs.toml)")

	root.AddCommand(
		newViewCommand(g),
		newUnpairedCommand(g),
		newTreeCommand(g),
		newFilterCommand(g),
		newFoldCommand(g),
		newJumpCommand(g),
		newIgnitionCommand(g),
		newExportCommand(g),
		newSyntaxCommand(g),
	)
	return root
}

func newViewCommand(g *globals) *cobra.Command {
	var follow bool
	var prefsPath string
	cmd := &cobra.Command{
		Use:         "view FILE",
		Short:       "Open a log in the viewer",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{tuiAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runViewer(cmd.Context(), args[0], prefsPath, follow)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep the cursor on the last line as the file grows")
	cmd.Flags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/sdllogs/prefs.toml)")
	return cmd
}

// setup loads the configuration and builds the logger. The viewer owns the
// terminal, so its logs go to the log file or nowhere.
func (g *globals) setup(cmd *cobra.Command) error {
	env, err := app.LoadEnv(g.configPath, g.syntaxPath)
	if err != nil {
		return err
	}
	g.env = env

	level := g.logLevel
	if level == "" {
		level = env.Config.LogLevel
	}
	file := g.logFile
	if file == "" {
		file = env.Config.LogFile
	}
	var fallback io.Writer = cmd.ErrOrStderr()
	if cmd.Annotations[tuiAnnotation] == "true" {
		fallback = nil
	}

	log, closeLog, err := logging.New(logging.Options{Level: level, File: file, Fallback: fallback})
	if err != nil {
		return err
	}
	g.log, g.closeLog = log, closeLog
	g.log.WithFields(logrus.Fields{
		"command": cmd.Name(),
		"syntax":  env.Syntax.Source(),
	}).Debug("configuration loaded")
	return nil
}

func (g *globals) runViewer(ctx context.Context, path, prefsPath string, follow bool) error {
	env := g.env
	return app.Run(ctx, app.Options{
		PrefsPath: prefsPath,
		LogPath:   path,
		Follow:    follow,
		Logger:    g.log,
		Env:       &env,
	})
}

// load reads path the way the viewer does.
func (g *globals) load(path string) (*buffer.Buffer, error) {
	buf, err := g.env.Loader(path)()
	if err != nil {
		return nil, err
	}
	g.log.WithFields(logrus.Fields{"path": path, "lines": buf.LineCount()}).Debug("log loaded")
	return buf, nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "sdllogs: %v\n", err)
		return 1
	}
	return 0
}

// lineArg converts a 1-based line flag into an index into buf.
func lineArg(buf *buffer.Buffer, line int) (int, error) {
	if line < 1 || line > buf.LineCount() {
		return 0, fmt.Errorf("line %d out of range (1-%d)", line, buf.LineCount())
	}
	return line - 1, nil
}
