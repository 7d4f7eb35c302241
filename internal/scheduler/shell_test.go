package scheduler

import (
	"errors"
	"os/exec"
	"testing"
)

func TestShell_SubmitAndPoll(t *testing.T) {
	s := NewShell()
	outcome, err := s.Submit(`echo "Hello, dir0!"`, ResourceRequest{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.JobID == "" {
		t.Fatal("expected a sentinel job id")
	}

	states, err := s.Poll([]string{outcome.JobID})
	if err != nil {
		t.Fatal(err)
	}
	if states[outcome.JobID] != JobFinished {
		t.Fatalf("expected shell job reported finished, got %v", states[outcome.JobID])
	}
}

func TestShell_SubmitFailure(t *testing.T) {
	s := NewShell()
	if _, err := s.Submit(`exit 1`, ResourceRequest{}, ""); err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestShell_SubmitFailure_ScriptExitTwoUnwrapped(t *testing.T) {
	s := NewShell()
	_, err := s.Submit(`exit 2`, ResourceRequest{}, "")
	if err == nil {
		t.Fatal("expected error for exit 2")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected a raw *exec.ExitError for the script's own exit 2, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 2 {
		t.Fatalf("exit code = %d, want 2", exitErr.ExitCode())
	}
}
