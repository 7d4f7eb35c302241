package project

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jorge-barreto/row/internal/cluster"
	"github.com/jorge-barreto/row/internal/group"
	"github.com/jorge-barreto/row/internal/lock"
	"github.com/jorge-barreto/row/internal/scheduler"
	"github.com/jorge-barreto/row/internal/workflow"
)

// SubmitOptions configures one submit() call.
type SubmitOptions struct {
	Actions       []string
	Directories   []string // empty means the whole workspace
	NLimit        int      // 0 means unlimited
	DryRun        bool
	Confirm       bool // prompt before submitting, unless suppressed
	ActiveCluster string
}

// GroupSubmission is one group's plan, used both for dry-run printing and
// for the real submit loop. Err is set if the scheduler rejected this
// particular group; Dispatch stops at that group, so the groups after it
// are not attempted.
type GroupSubmission struct {
	Action      string
	Directories []string
	Script      string
	Partition   string
	Request     scheduler.ResourceRequest
	Err         error
}

// Dispatch refreshes, then for each action (in declaration order) forms
// submission groups, computes resource totals and partition, synthesizes
// the script, prompts unless suppressed, and submits each group —
// persisting the submission store immediately after each success so at
// most one group's outcome can be lost to a crash.
//
// Named Dispatch, not Submit, because Project already carries a Submit
// field holding the submission store.
func (p *Project) Dispatch(ctx context.Context, sched scheduler.Scheduler, opts SubmitOptions) ([]GroupSubmission, error) {
	if err := p.Refresh(ctx, sched, opts.ActiveCluster); err != nil {
		return nil, err
	}

	cl, err := p.Clusters.ByName(opts.ActiveCluster)
	if err != nil {
		return nil, err
	}

	candidates := opts.Directories
	if len(candidates) == 0 {
		candidates = p.Directories()
	}

	var plans []GroupSubmission
	for _, name := range actionsOrDeclared(p.Workflow, opts.Actions) {
		for _, action := range p.Workflow.ActionsByName(name) {
			groups, err := group.SubmissionGroups(action, candidates, p.Complete.IsComplete, p.Submit.SubmittedAnyCluster, p.valueOf)
			if err != nil {
				return nil, err
			}
			for _, g := range groups {
				if opts.NLimit > 0 && len(g) > opts.NLimit {
					g = g[:opts.NLimit]
				}
				script, partition, err := p.planGroup(action, g, cl)
				if err != nil {
					return nil, err
				}
				req := p.resourceRequest(action, len(g))
				plans = append(plans, GroupSubmission{Action: action.Name, Directories: g, Script: script, Partition: partition, Request: req})
			}
		}
	}

	if opts.DryRun {
		return plans, nil
	}

	if opts.Confirm && !confirm(len(plans)) {
		return nil, nil
	}

	l, err := lock.Acquire(ctx, p.StateDir)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	for i, plan := range plans {
		if err := ctx.Err(); err != nil {
			return plans, err
		}
		outcome, err := sched.Submit(plan.Script, plan.Request, plan.Partition)
		if err != nil {
			plans[i].Err = err
			return plans, err
		}
		for _, d := range plan.Directories {
			p.Submit.Record(cl.Name, plan.Action, d, outcome.JobID)
		}
		if err := p.Submit.Save(); err != nil {
			return plans, err
		}
	}

	return plans, nil
}

// planGroup resolves the action's launchers and resource request against
// cl, selects a partition (SLURM clusters only — shell has none to pick
// from), and synthesizes the submission script.
func (p *Project) planGroup(action *workflow.Action, directories []string, cl *cluster.Cluster) (script, partition string, err error) {
	req := p.resourceRequest(action, len(directories))

	launchers, err := p.Clusters.LaunchersFor(action.Launchers, cl.Name)
	if err != nil {
		return "", "", err
	}
	schedLaunchers := make([]scheduler.Launcher, len(launchers))
	for i, l := range launchers {
		schedLaunchers[i] = scheduler.Launcher{
			Executable:    l.Executable,
			ProcessesFlag: l.ProcessesFlag,
			ThreadsFlag:   l.ThreadsFlag,
			GPUsFlag:      l.GPUsFlag,
		}
	}

	submitOpts := action.SubmitOptions[cl.Name]
	env := envExports(cl.Name, action, req)

	var preamble []string
	if cl.Scheduler == "slurm" {
		submitOpts.Account = scheduler.ExpandVars(submitOpts.Account, env)
		decision, err := scheduler.DescribePartition(action.Name, cl.Partitions, req, submitOpts.Partition)
		if err != nil {
			return "", "", err
		}
		partition = decision.Partition.Name
		preamble = slurmPreamble(action.Name, decision, req, submitOpts)
	}
	if submitOpts.Setup != "" {
		preamble = append(preamble, strings.Split(scheduler.ExpandVars(submitOpts.Setup, env), "\n")...)
	}

	values := make(map[string]any, len(directories))
	for _, d := range directories {
		v, _ := p.valueOf(d)
		values[d] = v
	}

	script, err = scheduler.Synthesize(scheduler.ScriptParams{
		Action:        action.Name,
		Command:       action.Command,
		Directories:   directories,
		WorkspacePath: p.Workflow.Workspace.Path,
		Values:        values,
		Launchers:     schedLaunchers,
		Preamble:      preamble,
		EnvExports:    env,
		Request:       req,
		ScanCommand:   fmt.Sprintf("row scan --action %s", action.Name),
	})
	if err != nil {
		return "", "", err
	}
	return script, partition, nil
}

// resourceRequest combines an action's per-submission or per-directory
// resources for a group of n directories.
func (p *Project) resourceRequest(action *workflow.Action, n int) scheduler.ResourceRequest {
	r := action.Resources

	processes := r.ProcessesPerSubmission
	if processes == 0 {
		processes = r.ProcessesPerDirectory * n
	}
	if processes == 0 {
		processes = 1
	}

	walltime := r.WalltimePerSubmission
	if walltime == 0 {
		walltime = r.WalltimePerDirectory * n
	}

	gpus := 0
	if r.GPUsPerProcess > 0 {
		gpus = r.GPUsPerProcess * processes
	}

	return scheduler.ResourceRequest{
		Processes: processes,
		Threads:   r.ThreadsPerProcess,
		GPUs:      gpus,
		Walltime:  walltime,
	}
}

// envExports builds the ACTION_* environment variables generated scripts
// export.
func envExports(clusterName string, action *workflow.Action, req scheduler.ResourceRequest) map[string]string {
	env := map[string]string{
		"ACTION_CLUSTER":             clusterName,
		"ACTION_NAME":                action.Name,
		"ACTION_PROCESSES":           fmt.Sprint(req.Processes),
		"ACTION_WALLTIME_IN_MINUTES": fmt.Sprint(req.Walltime),
	}
	if action.Resources.ProcessesPerDirectory > 0 {
		env["ACTION_PROCESSES_PER_DIRECTORY"] = fmt.Sprint(action.Resources.ProcessesPerDirectory)
	}
	if action.Resources.ThreadsPerProcess > 0 {
		env["ACTION_THREADS_PER_PROCESS"] = fmt.Sprint(action.Resources.ThreadsPerProcess)
	}
	if action.Resources.GPUsPerProcess > 0 {
		env["ACTION_GPUS_PER_PROCESS"] = fmt.Sprint(action.Resources.GPUsPerProcess)
	}
	return env
}

// slurmPreamble renders #SBATCH directives from the partition decision
// and the action's per-cluster submit options.
func slurmPreamble(action string, decision *scheduler.PartitionDecision, req scheduler.ResourceRequest, opts workflow.SubmitOptions) []string {
	lines := []string{
		"#SBATCH --job-name=" + action,
		fmt.Sprintf("#SBATCH --partition=%s", decision.Partition.Name),
		fmt.Sprintf("#SBATCH --nodes=%d", decision.Nodes),
		fmt.Sprintf("#SBATCH --ntasks=%d", req.Processes),
	}
	if req.Threads > 0 {
		lines = append(lines, fmt.Sprintf("#SBATCH --cpus-per-task=%d", req.Threads))
	}
	if req.Walltime > 0 {
		lines = append(lines, fmt.Sprintf("#SBATCH --time=%d", req.Walltime))
	}
	if opts.Account != "" {
		lines = append(lines, "#SBATCH --account="+opts.Account+decision.Partition.AccountSuffix)
	}
	for _, flag := range decision.Flags {
		lines = append(lines, "#SBATCH "+flag)
	}
	for _, c := range opts.Custom {
		lines = append(lines, "#SBATCH "+c)
	}
	return lines
}

func (p *Project) valueOf(directory string) (any, bool) {
	return p.Values.Value(directory)
}

func actionsOrDeclared(wf *workflow.Workflow, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return wf.ActionNames()
}

// confirm prompts for y/yes before proceeding.
func confirm(groupCount int) bool {
	fmt.Printf("Submit %d group(s)? [y/N]: ", groupCount)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
