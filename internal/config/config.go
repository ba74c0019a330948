package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the user settings for sdllogs.
type Config struct {
	SyntaxPath         string // empty uses the built-in syntax
	SourcePath         string // local checkout that replaces the build prefix
	SourceMarker       string
	IndentUnit         string
	IgnitionSeparators bool
	PollSeconds        int
	MaxLines           int // zero loads whole files
	ExportBucket       string
	LogLevel           string
	LogFile            string
}

const (
	defaultConfigPath   = "~/.config/sdllogs/config.toml"
	defaultSourceMarker = "/sdl_core/src/"
	defaultIndentUnit   = "     "
	defaultPollSeconds  = 2
	defaultLogLevel     = "info"
)

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		SourceMarker:       defaultSourceMarker,
		IndentUnit:         defaultIndentUnit,
		IgnitionSeparators: true,
		PollSeconds:        defaultPollSeconds,
		LogLevel:           defaultLogLevel,
	}
}

// DefaultPath returns the default config file path, unexpanded.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Syntax             string `toml:"syntax"`
		SourcePath         string `toml:"source_path"`
		SourceMarker       string `toml:"source_marker"`
		IndentUnit         string `toml:"indent_unit"`
		IgnitionSeparators *bool  `toml:"ignition_separators"`
		PollSeconds        int    `toml:"poll_seconds"`
		MaxLines           int    `toml:"max_lines"`
		ExportBucket       string `toml:"export_bucket"`
		LogLevel           string `toml:"log_level"`
		LogFile            string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if p := strings.TrimSpace(raw.Syntax); p != "" {
		cfg.SyntaxPath = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.SourcePath); p != "" {
		cfg.SourcePath = mustExpand(p)
	}
	if m := strings.TrimSpace(raw.SourceMarker); m != "" {
		cfg.SourceMarker = m
	}
	// Indentation is whitespace, so only an empty value falls back.
	if raw.IndentUnit != "" {
		cfg.IndentUnit = raw.IndentUnit
	}
	if raw.IgnitionSeparators != nil {
		cfg.IgnitionSeparators = *raw.IgnitionSeparators
	}
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}
	if raw.MaxLines > 0 {
		cfg.MaxLines = raw.MaxLines
	}
	cfg.ExportBucket = strings.TrimSpace(raw.ExportBucket)
	if lvl := strings.TrimSpace(raw.LogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if p := strings.TrimSpace(raw.LogFile); p != "" {
		cfg.LogFile = mustExpand(p)
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
