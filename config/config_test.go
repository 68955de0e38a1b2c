package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDefault(t *testing.T) {
	c := qt.New(t)
	cfg := Default()
	c.Assert(cfg.IFS, qt.Equals, " \t\n")
	c.Assert(cfg.History.Size, qt.Equals, 1000)
	c.Assert(cfg.Prompt.PS1, qt.Equals, "$ ")
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)
}

func TestLoadParsesOptionsAndOverridesDefaults(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "cirrusrc.toml")
	body := `
ifs = ","

[options]
errexit = true
pipefail = true

[history]
size = 42

[prompt]
ps1 = "cirrus> "
`
	c.Assert(os.WriteFile(path, []byte(body), 0o644), qt.IsNil)

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.IFS, qt.Equals, ",")
	c.Assert(cfg.Options.Errexit, qt.IsTrue)
	c.Assert(cfg.Options.Pipefail, qt.IsTrue)
	c.Assert(cfg.Options.Nounset, qt.IsFalse)
	c.Assert(cfg.History.Size, qt.Equals, 42)
	c.Assert(cfg.Prompt.PS1, qt.Equals, "cirrus> ")
	c.Assert(cfg.Prompt.PS2, qt.Equals, "> ")
}

func TestResolvePathPrefersEnvOverride(t *testing.T) {
	c := qt.New(t)
	want := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv("CIRRUS_CONFIG", want)
	c.Assert(ResolvePath(), qt.Equals, want)
}
