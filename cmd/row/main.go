package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/row/internal/cluster"
	"github.com/jorge-barreto/row/internal/project"
	"github.com/jorge-barreto/row/internal/rowerr"
	"github.com/jorge-barreto/row/internal/rowlog"
	"github.com/jorge-barreto/row/internal/scaffold"
	"github.com/jorge-barreto/row/internal/scheduler"
	"github.com/jorge-barreto/row/internal/ux"
)

func main() {
	app := &cli.Command{
		Name:        "row",
		Usage:       "Directory-oriented HPC workflow state and submission engine",
		Description: "row tracks per-directory action completion and submits eligible work to a cluster scheduler.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Increase log verbosity by N levels"},
			&cli.IntFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Decrease log verbosity by N levels"},
			&cli.StringFlag{Name: "cluster", Usage: "Force the active cluster by name, bypassing identify rules"},
		},
		Commands: []*cli.Command{
			initCmd(),
			submitCmd(),
			scanCmd(),
			showCmd(),
			cleanCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to one of row's reserved exit codes:
// 2 for a dispatched action script's own failure (its "|| exit 2"
// convention, surfaced unwrapped by the shell scheduler backend), 3 for
// a scheduler-level rejection, 1 for everything else recoverable.
func exitCodeFor(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	var schedErr *rowerr.SchedulerError
	if errors.As(err, &schedErr) {
		return 3
	}
	return 1
}

func openProject(cmd *cli.Command) (*project.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := project.FindRoot(cwd)
	if err != nil {
		return nil, err
	}
	log := rowlog.New(int(cmd.Int("verbose")), int(cmd.Int("quiet")), nil)
	return project.Open(root, configDir(), log)
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "row")
}

// resolveCluster picks the active cluster (forced by --cluster, or by
// identify rules) and the scheduler backend that runs its jobs.
func resolveCluster(cmd *cli.Command, p *project.Project) (*cluster.Cluster, scheduler.Scheduler, error) {
	cl, err := p.Clusters.Active(cmd.String("cluster"))
	if err != nil {
		return nil, nil, err
	}
	if cl.Scheduler == "slurm" {
		user := os.Getenv("USER")
		if user == "" {
			user = os.Getenv("LOGNAME")
		}
		return cl, scheduler.NewSLURM(cl.Partitions, user), nil
	}
	return cl, scheduler.NewShell(), nil
}

// progressFunc returns a progress bar callback, or nil when
// ROW_NO_PROGRESS is set.
func progressFunc(label string) func(done, total int) {
	if os.Getenv("ROW_NO_PROGRESS") != "" {
		return nil
	}
	var bar *progressbar.ProgressBar
	clear := os.Getenv("ROW_CLEAR_PROGRESS") != ""
	return func(done, total int) {
		if bar == nil {
			opts := []progressbar.Option{progressbar.OptionSetDescription(label)}
			if clear {
				opts = append(opts, progressbar.OptionClearOnFinish())
			}
			bar = progressbar.NewOptions(total, opts...)
		}
		bar.Set(done)
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a new workflow.toml and supporting files in the current directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workspace", Usage: "Workspace directory name (default \"workspace\")"},
			&cli.BoolFlag{Name: "signac", Usage: "Use signac_statepoint.json per directory instead of value.json"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir, scaffold.Options{
				Workspace: cmd.String("workspace"),
				Signac:    cmd.Bool("signac"),
			})
		},
	}
}

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Refresh project state and submit eligible work",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "action", Usage: "Restrict to these actions (default: all, in declaration order)"},
			&cli.StringSliceFlag{Name: "directory", Usage: "Restrict to these directories (default: the whole workspace)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Cap each submission group to at most N directories"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the submission plan without submitting"},
			&cli.BoolFlag{Name: "yes", Usage: "Do not prompt for confirmation before submitting"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			cl, sched, err := resolveCluster(cmd, p)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			dryRun := cmd.Bool("dry-run")
			plans, dispatchErr := p.Dispatch(ctx, sched, project.SubmitOptions{
				Actions:       cmd.StringSlice("action"),
				Directories:   cmd.StringSlice("directory"),
				NLimit:        int(cmd.Int("limit")),
				DryRun:        dryRun,
				Confirm:       !cmd.Bool("yes") && os.Getenv("ROW_YES") == "" && !dryRun,
				ActiveCluster: cl.Name,
			})
			if plans == nil && dispatchErr != nil {
				return dispatchErr
			}

			if dryRun {
				for i, plan := range plans {
					ux.GroupPlan(i, len(plans), plan.Action, plan.Directories, plan.Partition)
				}
				return nil
			}

			for _, plan := range plans {
				if plan.Err != nil {
					ux.SubmitFail(plan.Action, plan.Err)
					continue
				}
				jobID, ok := firstJobID(p, cl.Name, plan)
				if !ok {
					continue
				}
				ux.Submitted(plan.Action, jobID, len(plan.Directories))
			}
			// Groups after a rejected one are not submitted; dispatchErr
			// (that rejection, if any) drives the process exit code.
			return dispatchErr
		},
	}
}

func firstJobID(p *project.Project, clusterName string, plan project.GroupSubmission) (string, bool) {
	if len(plan.Directories) == 0 {
		return "", false
	}
	return p.Submit.SubmittedOn(clusterName, plan.Action, plan.Directories[0])
}

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Check product completion for directories read from stdin (invoked by generated scripts)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "action", Required: true, Usage: "Action whose products to check"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			n, err := p.ScanAction(ctx, cmd.String("action"), os.Stdin)
			if err != nil {
				return err
			}
			fmt.Printf("%d director%s staged complete\n", n, plural(n))
			return nil
		},
	}
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Inspect project, cluster, or launcher state",
		Commands: []*cli.Command{
			showStatusCmd(),
			showDirectoriesCmd(),
			showClusterCmd(),
			showLaunchersCmd(),
		},
	}
}

func showStatusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Refresh, then print per-action status counts and resource-hour estimates",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "action", Usage: "Restrict to these actions (default: all)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			cl, sched, err := resolveCluster(cmd, p)
			if err != nil {
				return err
			}
			if err := p.RefreshWithProgress(ctx, sched, cl.Name, progressFunc("refresh")); err != nil {
				return err
			}

			actions := cmd.StringSlice("action")
			if len(actions) == 0 {
				actions = p.Workflow.ActionNames()
			}
			ux.RenderStatus(p.Status(actions, p.Directories()))
			return nil
		},
	}
}

func showDirectoriesCmd() *cli.Command {
	return &cli.Command{
		Name:      "directories",
		Usage:     "List every directory's status for one action",
		ArgsUsage: "<action>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("action argument is required")
			}
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			actions := p.Workflow.ActionsByName(name)
			if len(actions) == 0 {
				return &rowerr.NotFound{Kind: "action", Name: name}
			}
			ux.RenderDirectories(name, p.Directories(), func(d string) project.Status {
				return p.Classify(actions[0], d)
			})
			return nil
		},
	}
}

func showClusterCmd() *cli.Command {
	return &cli.Command{
		Name:  "cluster",
		Usage: "List configured clusters and their partitions",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			active, err := p.Clusters.Active(cmd.String("cluster"))
			if err != nil {
				return err
			}
			ux.RenderClusters(p.Clusters.Clusters, active.Name)
			return nil
		},
	}
}

func showLaunchersCmd() *cli.Command {
	return &cli.Command{
		Name:  "launchers",
		Usage: "List configured launcher profiles",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			ux.RenderLaunchers(p.Clusters.Launchers)
			return nil
		},
	}
}

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Administrative reset of cached project state; with no flags, resets everything",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "completed", Usage: "Reset the completion store"},
			&cli.BoolFlag{Name: "directory", Usage: "Reset the per-directory value cache"},
			&cli.BoolFlag{Name: "submitted", Usage: "Reset the submission store"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			return p.Clean(project.CleanOptions{
				Completed: cmd.Bool("completed"),
				Directory: cmd.Bool("directory"),
				Submitted: cmd.Bool("submitted"),
			})
		},
	}
}
