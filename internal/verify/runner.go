// Package verify is the shipped verifier collaborator: it gathers machine
// evidence for command and file checklist leaves. Assertion and quality
// leaves need a judgment-capable actor and are left pending.
package verify

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/recurhq/aot/internal/checklist"
)

// DefaultTimeout bounds each command check.
const DefaultTimeout = 120 * time.Second

// Runner executes command and file checks relative to Dir.
type Runner struct {
	// Dir is the working directory for commands and the base for relative
	// paths. Empty means the process working directory.
	Dir string
	// Timeout bounds each command; zero means DefaultTimeout.
	Timeout time.Duration
}

// Gather walks the checklist leaves and returns evidence for every leaf it
// can decide. Commands run through the shell, matching how the checks are
// authored; a command that cannot be started or times out yields no evidence,
// leaving its leaf pending rather than guessing an exit code.
func (r *Runner) Gather(ctx context.Context, items []checklist.Node) (checklist.Evidence, error) {
	ev := make(checklist.Evidence)
	for _, leaf := range checklist.Leaves(items) {
		switch leaf.Check.Kind {
		case checklist.KindCommand, checklist.KindNotCommand:
			code, ok := r.runCommand(ctx, leaf.Check.Value)
			if ok {
				ev[leaf.Path] = checklist.LeafEvidence{ExitCode: &code}
			}
		case checklist.KindFile, checklist.KindNotFile:
			exists := r.fileExists(leaf.Check.Value)
			ev[leaf.Path] = checklist.LeafEvidence{Exists: &exists}
		case checklist.KindAssertion, checklist.KindQuality:
			// External judgment required; no machine evidence.
		}
		if err := ctx.Err(); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (r *Runner) runCommand(ctx context.Context, command string) (int, bool) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "sh", "-c", command)
	cmd.Dir = r.Dir
	err := cmd.Run()
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && cctx.Err() == nil {
		return exitErr.ExitCode(), true
	}
	// Timed out or never started.
	return 0, false
}

func (r *Runner) fileExists(path string) bool {
	if r.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}
	_, err := os.Stat(path)
	return err == nil
}
