package orchestrator

import (
	"errors"
	"fmt"
)

// Configuration errors caught by the precondition check, before any
// connection attempt.
var (
	ErrNoAuthMethod        = errors.New("no authentication method configured (need a private key path or a password)")
	ErrAmbiguousAuthMethod = errors.New("both a private key path and a password are configured; exactly one is required")
)

// StepError marks a fatal failure in a named pipeline step. The first one
// aborts the remaining steps of the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
