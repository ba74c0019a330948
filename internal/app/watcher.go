package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/sdllogs/sdllogs/internal/buffer"
	"github.com/sdllogs/sdllogs/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
	settleDelay         = 150 * time.Millisecond
)

// Loader reads the followed file into a buffer.
type Loader func() (*buffer.Buffer, error)

// StartWatcher launches a background goroutine that reloads path into store
// whenever the file changes. It watches the parent directory with fsnotify so
// that truncation and re-creation by log rotation are seen; when a watcher
// cannot be set up it polls every interval instead. It returns immediately.
func StartWatcher(ctx context.Context, store *state.Store, path string, load Loader, interval time.Duration, log *logrus.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	f := &follower{store: store, path: path, load: load, interval: interval, log: log}

	w, err := fsnotify.NewWatcher()
	if err == nil {
		if err = w.Add(filepath.Dir(path)); err != nil {
			_ = w.Close()
		}
	}
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("file watch unavailable, polling")
		go f.poll(ctx)
		return
	}
	go f.watch(ctx, w)
}

type follower struct {
	store    *state.Store
	path     string
	load     Loader
	interval time.Duration
	log      *logrus.Logger
}

func (f *follower) watch(ctx context.Context, w *fsnotify.Watcher) {
	defer w.Close()

	target := filepath.Clean(f.path)
	var settle <-chan time.Time
	var retry <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && settle == nil {
				// A burst of writes collapses into one reload.
				settle = time.After(settleDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.WithError(err).Warn("file watch error")
		case <-settle:
			settle = nil
			if err := f.refresh(); err != nil {
				retry = time.After(f.backoff())
			} else {
				retry = nil
			}
		case <-retry:
			retry = nil
			if err := f.refresh(); err != nil {
				retry = time.After(f.backoff())
			}
		}
	}
}

func (f *follower) poll(ctx context.Context) {
	for {
		timer := time.NewTimer(f.backoff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		_ = f.refresh()
	}
}

func (f *follower) backoff() time.Duration {
	return calculateBackoff(f.store.Snapshot().ConsecutiveFailures, f.interval)
}

func (f *follower) refresh() error {
	buf, err := f.load()
	f.store.Update(f.path, buf, err)
	if err != nil {
		f.log.WithError(err).WithField("path", f.path).Warn("reload failed")
		return err
	}
	f.log.WithFields(logrus.Fields{
		"path":  f.path,
		"lines": buf.LineCount(),
	}).Debug("reloaded")
	return nil
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
