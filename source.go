// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

//-------------------------------------------------------------------
// RadioSource
//-------------------------------------------------------------------

// RadioSource is a transmitter at a known position. The position may carry
// its own uncertainty as a covariance matrix (e.g. when the source location
// was itself estimated). Sources are owned by the caller and never mutated
// by the estimator.
type RadioSource struct {
	ID                 uuid.UUID
	Position           Position
	PositionCovariance *mat.SymDense // nil when the position is exact
}

// NewRadioSource creates a source at pos with a fresh identifier and no
// position uncertainty.
func NewRadioSource(pos Position) *RadioSource {
	return &RadioSource{
		ID:       uuid.New(),
		Position: pos,
	}
}

// NewRadioSourceWithCovariance creates a source whose own position is
// uncertain. cov must be dims x dims.
func NewRadioSourceWithCovariance(pos Position, cov *mat.SymDense) (*RadioSource, error) {
	if cov != nil && cov.SymmetricDim() != pos.Dims() {
		return nil, preconditionf("positionCovariance", "size %d does not match %d dimensions",
			cov.SymmetricDim(), pos.Dims())
	}
	return &RadioSource{
		ID:                 uuid.New(),
		Position:           pos,
		PositionCovariance: cov,
	}, nil
}

func (s *RadioSource) String() string {
	return fmt.Sprintf("%s %s", s.ID, s.Position)
}
