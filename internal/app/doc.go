// Package app is the composition root of the viewer.
//
// # Overview
//
// Run wires configuration, the trace syntax, preferences, the snapshot store,
// the file watcher and the UI together:
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> LoadEnv()           config.toml + syntax file
//	       ├─────> prefs.Load()        theme, follow, folds
//	       ├─────> state.Store{}       Shared snapshot
//	       ├─────> Env.Loader()()      Initial load (logtail.Load)
//	       ├─────> StartWatcher()      Reload on change
//	       └─────> ui.Run()            Start TUI (blocks)
//
//	Watcher Loop:
//	┌─────────────────────────────────────────┐
//	│ StartWatcher() goroutine                │
//	│  ├─> fsnotify event on the log's dir    │
//	│  ├─> Loader()                           │
//	│  └─> store.Update()                     │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// A config or syntax file that cannot be parsed, and a log that cannot be
// opened at start, are returned from Run. Reload failures after that are
// recorded in the store and logged; the previous text stays on screen and
// retries back off up to 30 seconds.
//
// LoadEnv and Env.Loader are shared with the batch commands so that both
// read files the same way.
package app
