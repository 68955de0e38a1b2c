package interp

import "fmt"

// knownSignalNames are the names `trap -l` lists: the signals of interest
// are INT, TERM, HUP, plus the pseudo-signals EXIT and ERR.
var knownSignalNames = []string{"HUP", "INT", "TERM", "EXIT", "ERR"}

// biTrap implements the `trap` builtin forms: `trap` (list), `trap -l`
// (list names), `trap CMD SIG...` (set), `trap - SIG...` (reset to
// default), `trap '' SIG...` (ignore).
func biTrap(ex *Executor, args []string) error {
	if len(args) == 0 {
 for sig, cmd := range ex.RT.Traps {
 fmt.Fprintf(ex.RT.Stdout, "trap -- %q %s\n", cmd, sig)
 }
 ex.RT.LastExit = 0
 return nil
	}
	if args[0] == "-l" {
 for _, n := range knownSignalNames {
 fmt.Fprintln(ex.RT.Stdout, n)
 }
 ex.RT.LastExit = 0
 return nil
	}
	cmd, sigs := args[0], args[1:]
	if len(sigs) == 0 {
 // a single SIG argument with no command is treated as the
 // "reset" form below instead of erroring.
 delete(ex.RT.Traps, cmd)
 ex.RT.LastExit = 0
 return nil
	}
	switch cmd {
	case "-":
 for _, s := range sigs {
 delete(ex.RT.Traps, s)
 }
	default:
 for _, s := range sigs {
 ex.RT.Traps[s] = cmd
 }
	}
	ex.RT.LastExit = 0
	return nil
}
