package driverinstall

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

// Runner executes external tooling: signature inspection, notarization
// checks and the elevation wrapper around the installer itself. Tests
// substitute it to script process outcomes and count invocations.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// Output captures the streams of a finished process.
type Output struct {
	Stdout string
	Stderr string
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("running %s", cmd.String())
	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		// CommandContext has already killed the child on expiry; report
		// the timeout instead of the opaque kill signal.
		if ctx.Err() == context.DeadlineExceeded {
			return out, fmt.Errorf("%s timed out: %w", name, ctx.Err())
		}
		return out, err
	}

	return out, nil
}

// runWithTimeout bounds a single process invocation. Every external call
// gets its own deadline; one slow check must not eat the budget of the
// next.
func runWithTimeout(ctx context.Context, r Runner, d time.Duration, name string, args ...string) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.Run(ctx, name, args...)
}
