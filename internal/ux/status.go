package ux

import (
	"fmt"

	"github.com/jorge-barreto/row/internal/project"
)

// RenderStatus prints a per-action summary table: counts for each of the
// four statuses plus estimated CPU/GPU hours for everything not yet
// Completed.
func RenderStatus(summaries []project.Summary) {
	fmt.Printf("%s%-20s %10s %10s %10s %10s %14s%s\n",
		Bold, "ACTION", "COMPLETED", "SUBMITTED", "ELIGIBLE", "WAITING", "EST. HOURS", Reset)
	for _, s := range summaries {
		hours := s.EstimatedCPUHours
		unit := "cpu-h"
		if s.EstimatedGPUHours > 0 {
			hours = s.EstimatedGPUHours
			unit = "gpu-h"
		}
		fmt.Printf("%-20s %s%10d%s %10d %10d %10d %11.1f %s\n",
			s.Action, Green, s.Completed, Reset, s.Submitted, s.Eligible, s.Waiting, hours, unit)
	}
}

// RenderDirectories prints one line per directory with its status under
// the given action.
func RenderDirectories(action string, directories []string, classify func(string) project.Status) {
	fmt.Printf("%s%s%s\n", Bold, action, Reset)
	for _, d := range directories {
		st := classify(d)
		fmt.Printf("  %-10s %s\n", statusColor(st), d)
	}
}

func statusColor(s project.Status) string {
	switch s {
	case project.Completed:
		return Green + s.String() + Reset
	case project.Submitted:
		return Cyan + s.String() + Reset
	case project.Eligible:
		return Yellow + s.String() + Reset
	default:
		return Dim + s.String() + Reset
	}
}
