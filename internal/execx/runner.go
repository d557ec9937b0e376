// Package execx runs the external analysis tools as child processes.
//
// Every tool the pipeline drives (cutadapt, pear, vsearch, usearch) is opaque
// to the core: it is handed a fully formed argument vector and judged only by
// its exit status and combined output.
package execx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command describes one external tool invocation.
type Command struct {
	// Path is the executable path, overridable through configuration.
	Path string
	// Args is the argument vector, passed through verbatim.
	Args []string
	// Dir is an optional working directory for the child process.
	Dir string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Runner executes a command and returns its combined stdout and stderr.
// Run blocks until the child process exits; there is no timeout beyond
// whatever deadline the context carries.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecError reports a command that failed to launch or exited nonzero.
// It carries the full command line and the captured combined output.
type ExecError struct {
	Cmd    Command
	Output string
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Cmd.String(), e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ProcessRunner is the production Runner backed by os/exec.
type ProcessRunner struct{}

func NewProcessRunner() *ProcessRunner { return &ProcessRunner{} }

// Run spawns the command, merges its stdout and stderr into one capture and
// waits for it to finish. On nonzero exit or spawn failure the capture is
// preserved inside the returned *ExecError.
func (r *ProcessRunner) Run(ctx context.Context, cmd Command) (string, error) {
	child := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	child.Dir = cmd.Dir

	out, err := child.CombinedOutput()
	if err != nil {
		return "", &ExecError{Cmd: cmd, Output: string(out), Err: err}
	}

	return string(out), nil
}

var _ Runner = (*ProcessRunner)(nil)
