// Command cirrus is a POSIX-flavored shell built on top of package interp.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/cirrusshell/cirrus/config"
	"github.com/cirrusshell/cirrus/interp"
	"github.com/cirrusshell/cirrus/parser"
)

var (
	command = pflag.StringP("command", "c", "", "command to be executed")
	norc    = pflag.Bool("norc", false, "skip reading the rc file")
	login   = pflag.Bool("login", false, "run as a login shell")
)

func main() {
	pflag.Parse()
	os.Exit(runAll())
}

func runAll() int {
	rt := interp.NewRuntime()
	ex := interp.NewExecutor(rt)

	if *command != "" {
		return runSource(ex, *command, "-c")
	}

	args := pflag.Args()
	if len(args) == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			if !*norc {
				cfg := config.Default()
				if path := config.ResolvePath(); path != "" {
					if loaded, err := config.Load(path); err == nil {
						cfg = loaded
					}
				}
				applyConfigDefaults(ex, cfg)
				sourceRC(ex)
			}
			return runInteractive(ex, os.Stdin, os.Stdout)
		}
		data, err := readAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cirrus:", err)
			return 1
		}
		return runSource(ex, data, "stdin")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "cirrus:", err)
		return 1
	}
	rt.SetGlobal("0", args[0])
	rt.Positional[0] = args[1:]
	return runSource(ex, string(data), args[0])
}

func applyConfigDefaults(ex *interp.Executor, cfg *config.Config) {
	rt := ex.RT
	rt.Options.Errexit = cfg.Options.Errexit
	rt.Options.Nounset = cfg.Options.Nounset
	rt.Options.Pipefail = cfg.Options.Pipefail
	rt.Options.Xtrace = cfg.Options.Xtrace
	if cfg.IFS != "" {
		rt.SetGlobal("IFS", cfg.IFS)
	}
}

func sourceRC(ex *interp.Executor) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := home + "/.cirrusrc"
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	file, err := parser.Parse(string(data), path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cirrus:", err)
		return
	}
	ex.Run(file.Stmts)
}

func runSource(ex *interp.Executor, src, name string) int {
	file, err := parser.Parse(src, name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cirrus:", err)
		return 2
	}
	return ex.Run(file.Stmts)
}

// runInteractive is the REPL fallback: whole-line reads via bufio.Scanner.
// Richer line editing (history recall, arrow-key navigation) stays out of
// scope here.
func runInteractive(ex *interp.Executor, stdin *os.File, stdout *os.File) int {
	scanner := bufio.NewScanner(stdin)
	var buf strings.Builder
	fmt.Fprint(stdout, "$ ")
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
		file, err := parser.Parse(buf.String(), "<stdin>")
		if err != nil {
			fmt.Fprint(stdout, "> ")
			continue
		}
		buf.Reset()
		ex.Run(file.Stmts)
		fmt.Fprint(stdout, "$ ")
	}
	return ex.RT.LastExit
}

func readAll(f *os.File) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return sb.String(), err
		}
	}
	return sb.String(), nil
}
