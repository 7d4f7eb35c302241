package scheduler

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/google/uuid"

	"github.com/jorge-barreto/row/internal/rowerr"
)

// Shell runs submission scripts synchronously in-process, streaming
// output to stdout/stderr as it runs.
type Shell struct{}

func NewShell() *Shell { return &Shell{} }

func (s *Shell) Name() string { return "shell" }

// Submit runs script to completion via bash, synchronously. The returned
// job id is a random sentinel: Poll always reports it JobFinished, so a
// directory submitted through the shell backend becomes eligible for
// reclassification as soon as the next refresh observes its products.
func (s *Shell) Submit(script string, req ResourceRequest, partition string) (SubmitOutcome, error) {
	cmd := exec.Command("bash", "-c", script)

	var captured bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &captured)
	cmd.Stderr = io.MultiWriter(os.Stderr, &captured)

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() == 2 {
			// The script's own "|| { ...; exit 2; }" convention: an action
			// command failed, not the scheduler itself. Propagate
			// unwrapped so the exit-2 distinction survives to cmd/row.
			return SubmitOutcome{}, runErr
		}
		if errors.As(runErr, &exitErr) {
			return SubmitOutcome{}, rowerr.SchedulerRejected("", "", captured.String())
		}
		return SubmitOutcome{}, &rowerr.SchedulerError{Op: "submit", Message: runErr.Error()}
	}

	return SubmitOutcome{JobID: "shell-" + uuid.NewString(), Stderr: captured.String()}, nil
}

// Poll always reports every job id as JobFinished — the shell backend has no
// concept of a job outliving the Submit call that ran it.
func (s *Shell) Poll(jobIDs []string) (map[string]JobState, error) {
	out := make(map[string]JobState, len(jobIDs))
	for _, id := range jobIDs {
		out[id] = JobFinished
	}
	return out, nil
}
