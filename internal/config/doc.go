// Package config loads the sdllogs configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/sdllogs/config.toml (default)
//  3. If the config file doesn't exist, fall back to Defaults()
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
//	syntax = "~/sdl/SdlLogs.sublime-syntax"   # empty: built-in patterns
//	source_path = "~/work/sdl_core_checkout"  # replaces the build prefix
//	source_marker = "/sdl_core/src/"
//	indent_unit = "     "
//	ignition_separators = true
//	poll_seconds = 2
//	max_lines = 0                            # 0 loads whole files
//	export_bucket = "file:///var/tmp/sdllogs"
//	log_level = "info"
//	log_file = "~/.local/state/sdllogs/sdllogs.log"
//
// All fields are optional. Tilde expansion is performed for syntax,
// source_path and log_file.
//
// # Error Handling
//
// Missing config files are not an error. Load returns errors for path
// expansion failures, read errors other than os.ErrNotExist, and TOML
// parse errors.
package config
