package scheduler

import (
	"fmt"
	"strings"
)

// Launcher contributes an optional executable and conditional flag
// prefixes for a submission's process/thread/gpu counts.
type Launcher struct {
	Executable    string
	ProcessesFlag string // e.g. "-np " — prefix concatenated with the numeric value
	ThreadsFlag   string
	GPUsFlag      string
}

// ScriptParams is everything script synthesis needs, independent of
// backend.
type ScriptParams struct {
	Action        string
	Command       string // raw template, pre-expansion
	Directories   []string
	WorkspacePath string
	Values        map[string]any // directory -> parsed value, for per-directory expansion
	Launchers     []Launcher
	Preamble      []string // SLURM #SBATCH directives; empty for shell
	EnvExports    map[string]string
	Request       ResourceRequest
	ScanCommand   string // e.g. "row scan --action simulate" — invoked on exit with directories piped in
}

// Synthesize builds the full shell script for a submission group:
// preamble, env exports, a directories array, an exit trap that reports
// completions back via scan, then either a per-directory loop (command
// contains {directory}) or a single {directories} invocation.
func Synthesize(p ScriptParams) (string, error) {
	var b strings.Builder

	b.WriteString("#!/usr/bin/env bash\n")
	for _, line := range p.Preamble {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("set -u\n")

	for k, v := range p.EnvExports {
		fmt.Fprintf(&b, "export %s=%s\n", k, shellQuote(v))
	}

	b.WriteString("directories=(")
	for i, d := range p.Directories {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(shellQuote(d))
	}
	b.WriteString(")\n")

	if p.ScanCommand != "" {
		fmt.Fprintf(&b, "trap 'printf \"%%s\\n\" \"${directories[@]}\" | %s' EXIT\n", p.ScanCommand)
	}

	prefix := launcherPrefix(p.Launchers, p.Request)

	switch {
	case strings.Contains(p.Command, "{directory}"):
		b.WriteString("for directory in \"${directories[@]}\"; do\n")
		for _, d := range p.Directories {
			expanded, err := ExpandCommand(p.Command, d, p.WorkspacePath, p.Values[d])
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "  if [ \"$directory\" = %s ]; then %s%s || { >&2 echo \"action %s failed in %s\"; exit 2; }; fi\n",
				shellQuote(d), prefix, expanded, p.Action, d)
		}
		b.WriteString("done\n")

	case strings.Contains(p.Command, "{directories}"):
		expanded, err := ExpandCommandAll(p.Command, p.Directories, p.WorkspacePath)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s%s || { >&2 echo \"action %s failed\"; exit 2; }\n", prefix, expanded, p.Action)

	default:
		// Neither placeholder present: run once, identically, for every
		// directory (degenerate per-directory form).
		b.WriteString("for directory in \"${directories[@]}\"; do\n")
		fmt.Fprintf(&b, "  %s%s || { >&2 echo \"action %s failed in $directory\"; exit 2; }\n", prefix, p.Command, p.Action)
		b.WriteString("done\n")
	}

	return b.String(), nil
}

func launcherPrefix(launchers []Launcher, req ResourceRequest) string {
	var b strings.Builder
	for _, l := range launchers {
		if l.Executable != "" {
			b.WriteString(l.Executable)
			b.WriteByte(' ')
		}
		if l.ProcessesFlag != "" && req.Processes > 0 {
			fmt.Fprintf(&b, "%s%d ", l.ProcessesFlag, req.Processes)
		}
		if l.ThreadsFlag != "" && req.Threads > 0 {
			fmt.Fprintf(&b, "%s%d ", l.ThreadsFlag, req.Threads)
		}
		if l.GPUsFlag != "" && req.GPUs > 0 {
			gpusPerProcess := req.GPUs
			if req.Processes > 0 {
				gpusPerProcess = req.GPUs / req.Processes
			}
			fmt.Fprintf(&b, "%s%d ", l.GPUsFlag, gpusPerProcess)
		}
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
