package main

import (
	"os"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/cirrusshell/cirrus/config"
	"github.com/cirrusshell/cirrus/interp"
)

func TestApplyConfigDefaults(t *testing.T) {
	c := qt.New(t)
	rt := interp.NewRuntime()
	ex := interp.NewExecutor(rt)

	cfg := config.Default()
	cfg.Options.Errexit = true
	cfg.Options.Pipefail = true
	cfg.IFS = ":"

	applyConfigDefaults(ex, cfg)

	c.Assert(rt.Options.Errexit, qt.IsTrue)
	c.Assert(rt.Options.Pipefail, qt.IsTrue)
	c.Assert(rt.Options.Nounset, qt.IsFalse)
}

func TestReadAll(t *testing.T) {
	c := qt.New(t)
	r, w, err := os.Pipe()
	c.Assert(err, qt.IsNil)

	go func() {
		w.WriteString("echo hi\n")
		w.Close()
	}()

	data, err := readAll(r)
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.Equals, "echo hi\n")
}

func TestRunSourceReturnsParseErrorCode(t *testing.T) {
	c := qt.New(t)
	rt := interp.NewRuntime()
	ex := interp.NewExecutor(rt)
	code := runSource(ex, "if then fi", "test")
	c.Assert(code, qt.Equals, 2)
}

func TestRunSourceExecutesAndReturnsExitCode(t *testing.T) {
	c := qt.New(t)
	rt := interp.NewRuntime()
	ex := interp.NewExecutor(rt)
	code := runSource(ex, "exit 7", "test")
	c.Assert(code, qt.Equals, 7)
}
