package project

import (
	"github.com/jorge-barreto/row/internal/workflow"
)

// Status is the four-way classification of one (action, directory) pair,
// evaluated in priority order — earlier wins.
type Status int

const (
	Waiting Status = iota
	Eligible
	Submitted
	Completed
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "Completed"
	case Submitted:
		return "Submitted"
	case Eligible:
		return "Eligible"
	default:
		return "Waiting"
	}
}

// Classify computes the status of (action, directory) in priority order:
// Completed, then Submitted (any cluster), then Eligible (all previous
// actions Completed), else Waiting.
func (p *Project) Classify(action *workflow.Action, directory string) Status {
	if p.Complete.IsComplete(action.Name, directory) {
		return Completed
	}
	if p.Submit.SubmittedAnyCluster(action.Name, directory) {
		return Submitted
	}
	for _, prev := range action.PreviousActions {
		if !p.Complete.IsComplete(prev, directory) {
			return Waiting
		}
	}
	return Eligible
}

// Summary aggregates status counts and resource-hour estimates for one
// action over a set of directories.
type Summary struct {
	Action            string
	Completed         int
	Submitted         int
	Eligible          int
	Waiting           int
	EstimatedCPUHours float64
	EstimatedGPUHours float64
}

// Status computes per-action, per-directory classifications and rolls
// them into a Summary for each action.
func (p *Project) Status(actionNames, directories []string) []Summary {
	summaries := make([]Summary, 0, len(actionNames))
	for _, name := range actionNames {
		actions := p.Workflow.ActionsByName(name)
		if len(actions) == 0 {
			continue
		}
		summary := Summary{Action: name}
		for _, dir := range directories {
			action := resolveActionForDirectory(actions, dir)
			switch p.Classify(action, dir) {
			case Completed:
				summary.Completed++
			case Submitted:
				summary.Submitted++
			case Eligible:
				summary.Eligible++
			default:
				summary.Waiting++
			}
		}
		summary.EstimatedCPUHours, summary.EstimatedGPUHours = estimateHours(actions[0], summary)
		summaries = append(summaries, summary)
	}
	return summaries
}

// resolveActionForDirectory returns the first variant of a same-named
// multi-entry action. It does not evaluate the variants' include
// predicates against dir.
func resolveActionForDirectory(actions []*workflow.Action, dir string) *workflow.Action {
	return actions[0]
}

// estimateHours multiplies (submitted+eligible+waiting) directory-counts
// by the action's walltime and process/gpu counts, distinguishing CPU vs
// GPU by the presence of gpus_per_process.
func estimateHours(action *workflow.Action, s Summary) (cpuHours, gpuHours float64) {
	pending := float64(s.Submitted + s.Eligible + s.Waiting)
	if pending == 0 {
		return 0, 0
	}

	walltimeMinutes := action.Resources.WalltimePerSubmission
	if walltimeMinutes == 0 {
		walltimeMinutes = action.Resources.WalltimePerDirectory
	}
	hours := float64(walltimeMinutes) / 60.0

	processes := action.Resources.ProcessesPerSubmission
	if processes == 0 {
		processes = action.Resources.ProcessesPerDirectory
	}
	if processes == 0 {
		processes = 1
	}

	if action.Resources.GPUsPerProcess > 0 {
		gpuHours = pending * hours * float64(processes) * float64(action.Resources.GPUsPerProcess)
		return 0, gpuHours
	}
	cpuHours = pending * hours * float64(processes)
	return cpuHours, 0
}
