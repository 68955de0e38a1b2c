package interp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

// biProfile implements the `profile` builtin: run a command or pipeline
// with profiling enabled and report per-stage timings, either as a
// human-readable table or, with -json, as machine-readable JSON.
func biProfile(ex *Executor, args []string) error {
	if len(args) == 0 {
		return usageError(ex, "profile", "usage: profile [-json] command [args...]")
	}
	jsonOut := false
	if args[0] == "-json" {
		if len(args) < 2 {
			return usageError(ex, "profile", "-json requires a command")
		}
		jsonOut = true
		args = args[1:]
	}
	cmdString := strings.Join(args, " ")

	file, err := ex.parseTimed(cmdString, "profile")
	if err != nil {
		fmt.Fprintln(ex.RT.Stderr, "cirrus: profile:", err)
		ex.RT.LastExit = 2
		return nil
	}

	// The profiled command runs against the same Runtime, not a clone: its
	// variable/option side effects are meant to be visible afterward (it is
	// a diagnostic wrapper, not a subshell).
	sub := &Executor{
		RT:              ex.RT,
		Log:             ex.Log,
		Suggest:         ex.Suggest,
		EnableProfiling: true,
		Profile:         NewProfileData(),
		maxDepth:        ex.maxDepth,
		sigCh:           ex.sigCh,
	}
	code := sub.Run(file.Stmts)

	if jsonOut {
		fmt.Fprintln(ex.RT.Stdout, profileJSON(sub.Profile, cmdString, code))
	} else {
		fmt.Fprintln(ex.RT.Stdout, "\nProfiling:", cmdString)
		fmt.Fprint(ex.RT.Stdout, formatProfileTable(sub.Profile))
	}
	ex.RT.LastExit = code
	return nil
}

type profileStageJSON struct {
	Stage   string  `json:"stage"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
}

type profileReportJSON struct {
	Command  string             `json:"command"`
	ExitCode int                `json:"exit_code"`
	TotalMs  float64            `json:"total_ms"`
	Stages   []profileStageJSON `json:"stages"`
}

func profileJSON(p *ProfileData, cmd string, code int) string {
	report := profileReportJSON{
		Command:  cmd,
		ExitCode: code,
		TotalMs:  millis(p.TotalElapsed()),
	}
	for _, s := range p.Stages() {
		report.Stages = append(report.Stages, profileStageJSON{
			Stage:   s.Stage.String(),
			Count:   s.Count,
			TotalMs: millis(s.Total),
			AvgMs:   millis(s.Average()),
		})
	}
	b, err := json.Marshal(report)
	if err != nil {
		return "{}"
	}
	return string(b)
}

var (
	profileHeading = color.New(color.FgBlue, color.Bold)
	profileTotal   = color.New(color.FgCyan, color.Bold)
	profileNumber  = color.New(color.FgGreen)
)

// formatProfileTable renders p as a fixed-width table, colorized with a
// blue heading and green/cyan numbers.
func formatProfileTable(p *ProfileData) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(profileHeading.Sprint("Execution Timeline"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	stages := p.Stages()
	if len(stages) == 0 {
		sb.WriteString("No profiling data collected\n")
	} else {
		fmt.Fprintf(&sb, "%-30s %15s %15s %8s\n", "Stage", "Total", "Avg", "Count")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		for _, s := range stages {
			fmt.Fprintf(&sb, "%-30s %15s %15s %8d\n",
				s.Stage.String(),
				profileNumber.Sprint(formatDuration(s.Total)),
				profileNumber.Sprint(formatDuration(s.Average())),
				s.Count)
		}
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "%-30s %15s\n",
			profileTotal.Sprint("Total Time"),
			profileTotal.Sprint(formatDuration(p.TotalElapsed())))
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	return sb.String()
}

func formatDuration(d time.Duration) string {
	ms := millis(d)
	if ms >= 1.0 {
		return fmt.Sprintf("%.2fms", ms)
	}
	return fmt.Sprintf("%dµs", d.Microseconds())
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
