package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the unrecoverable conditions a run can hit. All of them
// are fatal; none are retried.
type Kind string

const (
	// KindDiscovery: no input files match a stage's expected naming convention.
	KindDiscovery Kind = "discovery"
	// KindExecution: an external tool exited nonzero or failed to launch.
	KindExecution Kind = "execution"
	// KindPostcondition: a stage completed without producing any output file.
	KindPostcondition Kind = "postcondition"
	// KindConfiguration: a required parameter was absent at startup.
	KindConfiguration Kind = "configuration"
)

// Error is the single error surface the pipeline exposes to callers.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s error in stage %s: %v", e.Kind, e.Stage, e.Err)
	}

	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Discovery wraps err as a discovery error.
func Discovery(err error) *Error { return &Error{Kind: KindDiscovery, Err: err} }

// Execution wraps err as an execution error.
func Execution(err error) *Error { return &Error{Kind: KindExecution, Err: err} }

// Postcondition wraps err as a postcondition error.
func Postcondition(err error) *Error { return &Error{Kind: KindPostcondition, Err: err} }

// Configuration wraps err as a configuration error.
func Configuration(err error) *Error { return &Error{Kind: KindConfiguration, Err: err} }

// KindOf reports the kind of a pipeline error, or false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind, true
	}

	return "", false
}

// withStage stamps the stage name onto a pipeline error, or wraps foreign
// errors with it.
func withStage(name string, err error) error {
	var perr *Error
	if errors.As(err, &perr) {
		if perr.Stage == "" {
			perr.Stage = name
		}

		return err
	}

	return errors.Wrapf(err, "stage %s", name)
}
