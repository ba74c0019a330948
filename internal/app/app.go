package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/config"
	"github.com/sdllogs/sdllogs/internal/logging"
	"github.com/sdllogs/sdllogs/internal/logtail"
	"github.com/sdllogs/sdllogs/internal/prefs"
	"github.com/sdllogs/sdllogs/internal/state"
	"github.com/sdllogs/sdllogs/internal/syntax"
	"github.com/sdllogs/sdllogs/internal/ui"
)

// Options configure the viewer.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/sdllogs/prefs.toml
	SyntaxPath string // overrides the syntax file named in the config
	LogPath    string // trace log to open; empty starts with an empty view
	Follow     bool   // keep the cursor on the last line as the file grows
	Logger     *logrus.Logger
	Env        *Env // already loaded configuration; nil loads it from the paths above
}

// Env is the configuration shared by the viewer and the batch commands.
type Env struct {
	Config config.Config
	Syntax *syntax.Set
}

// LoadEnv reads the config and the syntax it names. A non-empty syntaxPath
// takes precedence over the config.
func LoadEnv(configPath, syntaxPath string) (Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return Env{}, fmt.Errorf("load config: %w", err)
	}
	if syntaxPath == "" {
		syntaxPath = cfg.SyntaxPath
	}
	set := syntax.Default()
	if syntaxPath != "" {
		if set, err = syntax.Load(syntaxPath); err != nil {
			return Env{}, fmt.Errorf("load syntax: %w", err)
		}
	}
	return Env{Config: cfg, Syntax: set}, nil
}

// Loader returns the function that reads path with the settings of env.
func (e Env) Loader(path string) Loader {
	opts := logtail.Options{
		MaxLines:   e.Config.MaxLines,
		Syntax:     e.Syntax,
		Separators: e.Config.IgnitionSeparators,
	}
	return func() (*buffer.Buffer, error) {
		return logtail.Load(path, opts)
	}
}

// Run boots the viewer until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	var env Env
	if opts.Env != nil {
		env = *opts.Env
	} else {
		loaded, err := LoadEnv(opts.ConfigPath, opts.SyntaxPath)
		if err != nil {
			return err
		}
		env = loaded
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.WithError(err).Warn("load preferences; using defaults")
	}

	store := &state.Store{}
	interval := time.Duration(env.Config.PollSeconds) * time.Second

	if opts.LogPath != "" {
		load := env.Loader(opts.LogPath)

		// Do initial load to populate store before UI starts
		buf, err := load()
		if err != nil {
			return err
		}
		store.Update(opts.LogPath, buf, nil)
		log.WithFields(logrus.Fields{
			"path":  opts.LogPath,
			"lines": buf.LineCount(),
		}).Info("log loaded")

		StartWatcher(ctx, store, opts.LogPath, load, interval, log)
	}

	uiOpts := ui.Options{
		Context:   ctx,
		Store:     store,
		Syntax:    env.Syntax,
		Config:    env.Config,
		PollTick:  time.Second / 2,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Follow:    opts.Follow || userPrefs.Follow,
		Folds:     userPrefs.Folds,
		Logger:    log,
	}
	return ui.Run(uiOpts)
}
