package project

import (
	"bufio"
	"context"
	"io"

	"github.com/jorge-barreto/row/internal/completion"
)

// ScanAction checks, for action, which of the directories read from r
// (one per line, the form a synthesized script's exit trap pipes in) now
// have every product present, and stages the result for the next
// refresh's Merge. This deliberately does not take the project lock — it
// runs standalone on a compute node, possibly concurrently with other
// scans and with a refresh elsewhere.
func (p *Project) ScanAction(ctx context.Context, actionName string, r io.Reader) (int, error) {
	actions := p.Workflow.ActionsByName(actionName)
	if len(actions) == 0 {
		return 0, nil
	}

	var directories []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			directories = append(directories, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if len(directories) == 0 {
		return 0, nil
	}

	products := actions[0].Products
	result, err := p.Scan.ScanProducts(ctx, actionName, p.Workflow.Workspace.Path, products, directories, nil)
	if err != nil {
		return 0, err
	}
	if len(result.Complete) == 0 {
		return 0, nil
	}

	if err := completion.AddStaging(p.StateDir, completion.Record{Action: actionName, Directories: result.Complete}); err != nil {
		return 0, err
	}
	return len(result.Complete), nil
}
