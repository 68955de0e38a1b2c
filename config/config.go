// Package config loads the shell's optional TOML configuration file:
// defaults for shell options, IFS, history size, and prompt strings,
// loaded before the shell-script rc file is sourced.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrNotFound wraps a missing config file so callers can treat "no config"
// as a non-fatal default.
var ErrNotFound = errors.New("config file not found")

// Config is the parsed shape of ~/.cirrusrc.toml (or $CIRRUS_CONFIG).
type Config struct {
	Path string `toml:"-"`

	Options OptionDefaults `toml:"options"`
	IFS string `toml:"ifs"`
	History HistoryConfig `toml:"history"`
	Prompt PromptConfig `toml:"prompt"`
}

// OptionDefaults sets the initial value of each boolean shell option,
// before any rc script or command-line flag overrides them.
type OptionDefaults struct {
	Errexit bool `toml:"errexit"`
	Nounset bool `toml:"nounset"`
	Pipefail bool `toml:"pipefail"`
	Xtrace bool `toml:"xtrace"`
}

// HistoryConfig configures the size of the in-process bounded history ring
// buffer; history is not persisted.
type HistoryConfig struct {
	Size int `toml:"size"`
}

// PromptConfig holds the PS1/PS2 prompt strings for interactive use.
type PromptConfig struct {
	PS1 string `toml:"ps1"`
	PS2 string `toml:"ps2"`
}

// Default returns the configuration used when no rc file is present.
func Default() *Config {
	return &Config{
 IFS: " \t\n",
 History: HistoryConfig{Size: 1000},
 Prompt: PromptConfig{PS1: "$ ", PS2: "> "},
	}
}

// Load reads and parses the TOML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
 if errors.Is(err, os.ErrNotExist) {
 return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
 }
 return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := Default()
	cfg.Path = path
	if _, err := toml.Decode(string(data), cfg); err != nil {
 return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ResolvePath returns $CIRRUS_CONFIG if set, otherwise ~/.cirrusrc.toml.
func ResolvePath() string {
	if p := os.Getenv("CIRRUS_CONFIG"); p != "" {
 return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
 return ""
	}
	return home + "/.cirrusrc.toml"
}
