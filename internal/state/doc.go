// Package state shares the followed log between the reload loop and the UI.
//
// The watcher goroutine is the single writer; the TUI reads snapshots on its
// own tick. Store guards one Snapshot with a sync.RWMutex:
//
//	watcher:  load file -> store.Update(path, buf, err)
//	ui tick:  snap := store.Snapshot(); if snap.Version != seen { rebuild view }
//
// A failed reload keeps the last good buffer and records the error, so the
// viewer keeps showing text while the status line reports the failure.
// Version only moves when the text actually changed, which lets the UI skip
// re-rendering on no-op reloads.
//
// The zero Store is ready to use.
package state
