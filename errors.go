// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by Estimate when sources and fingerprint do not
	// yet form a solvable problem (see Estimator.IsReady).
	ErrNotReady = errors.New("estimator is not ready")

	// ErrLocked is returned by every mutator, and by Estimate itself, while an
	// estimation is running.
	ErrLocked = errors.New("estimator is locked while running")

	// ErrCovarianceNotPositiveDefinite is returned when the refined solution
	// covariance fails the positive definiteness check.
	ErrCovarianceNotPositiveDefinite = errors.New("covariance is not positive definite")
)

// PreconditionError indicates an invalid argument passed to a constructor or
// setter. It is raised synchronously at the offending call.
type PreconditionError struct {
	Param  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func preconditionf(param, format string, a ...any) error {
	return &PreconditionError{Param: param, Reason: fmt.Sprintf(format, a...)}
}

// EstimationError indicates that the consensus loop exhausted its iteration
// budget without accumulating a valid hypothesis.
//
// The root cause of the last failed subset solve (if any) can be accessed via
// errors.Unwrap.
type EstimationError struct {
	Iterations int
	cause      error
}

func (e *EstimationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("robust estimation failed after %d iterations: %s", e.Iterations, e.cause.Error())
	}
	return fmt.Sprintf("robust estimation failed after %d iterations", e.Iterations)
}

func (e *EstimationError) Unwrap() error { return e.cause }
