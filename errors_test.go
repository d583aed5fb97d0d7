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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreconditionError(t *testing.T) {
	t.Parallel()

	err := preconditionf("threshold", "must be positive, got %g", -1.0)
	assert.EqualError(t, err, "invalid threshold: must be positive, got -1")

	var pe *PreconditionError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "threshold", pe.Param)
}

func TestEstimationErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("degenerate subset")
	err := &EstimationError{Iterations: 17, cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "17 iterations")
	assert.Contains(t, err.Error(), "degenerate subset")

	bare := &EstimationError{Iterations: 3}
	assert.NoError(t, errors.Unwrap(bare))
	assert.Contains(t, bare.Error(), "3 iterations")
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNotReady, ErrLocked, ErrCovarianceNotPositiveDefinite}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
	// Wrapping keeps errors.Is working
	wrapped := fmt.Errorf("estimate: %w", ErrLocked)
	assert.ErrorIs(t, wrapped, ErrLocked)
}
