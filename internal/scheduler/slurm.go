package scheduler

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jorge-barreto/row/internal/cluster"
	"github.com/jorge-barreto/row/internal/rowerr"
)

// SLURM submits scripts via sbatch and polls via squeue.
type SLURM struct {
	Partitions []cluster.Partition
	User       string // for squeue -u
}

func NewSLURM(partitions []cluster.Partition, user string) *SLURM {
	return &SLURM{Partitions: partitions, User: user}
}

func (s *SLURM) Name() string { return "slurm" }

// Submit pipes script to sbatch on stdin and parses the numeric job id
// from stdout (with --parsable, sbatch prints just the id, e.g. "123456").
func (s *SLURM) Submit(script string, req ResourceRequest, partition string) (SubmitOutcome, error) {
	cmd := exec.Command("sbatch", "--parsable")
	if partition != "" {
		cmd.Args = append(cmd.Args, "--partition="+partition)
	}
	cmd.Stdin = strings.NewReader(script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return SubmitOutcome{}, rowerr.SchedulerRejected("", "", stderr.String())
	}

	jobID := strings.TrimSpace(stdout.String())
	// --parsable may emit "jobid;cluster" on some installations.
	if i := strings.IndexByte(jobID, ';'); i >= 0 {
		jobID = jobID[:i]
	}
	if _, err := strconv.Atoi(jobID); err != nil {
		return SubmitOutcome{}, &rowerr.SchedulerError{Op: "submit", Message: fmt.Sprintf("could not parse job id from sbatch output %q", jobID), Stderr: stderr.String()}
	}

	return SubmitOutcome{JobID: jobID, Stderr: stderr.String()}, nil
}

// Poll runs squeue for the user's job ids; ids present in the output are
// "active" (Pending or Running), ids absent are Finished — squeue drops
// jobs from its view once they leave the active queue.
func (s *SLURM) Poll(jobIDs []string) (map[string]JobState, error) {
	result := make(map[string]JobState, len(jobIDs))
	for _, id := range jobIDs {
		result[id] = JobFinished
	}
	if len(jobIDs) == 0 {
		return result, nil
	}

	args := []string{"--noheader", "--format=%i %t", "--jobs=" + strings.Join(jobIDs, ",")}
	if s.User != "" {
		args = append(args, "--user="+s.User)
	}
	cmd := exec.Command("squeue", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &rowerr.SchedulerError{Op: "poll", Message: err.Error(), Stderr: stderr.String()}
	}

	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[1] {
		case "PD":
			result[fields[0]] = JobPending
		case "R", "CG":
			result[fields[0]] = JobRunning
		default:
			result[fields[0]] = JobRunning
		}
	}
	return result, nil
}

// DescribePartition runs the package-level DescribePartition against this
// backend's partitions. It is not part of the Scheduler interface.
func (s *SLURM) DescribePartition(action string, req ResourceRequest, forcePartition string) (*PartitionDecision, error) {
	return DescribePartition(action, s.Partitions, req, forcePartition)
}
