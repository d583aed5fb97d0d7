// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionDistance(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 5.0, NewPosition2D(0, 0).Distance(NewPosition2D(3, 4)), 1e-12)
	assert.InDelta(t, 0.0, NewPosition3D(1, 2, 3).Distance(NewPosition3D(1, 2, 3)), 1e-12)
	assert.InDelta(t, math.Sqrt(3), NewPosition3D(0, 0, 0).Distance(NewPosition3D(1, 1, 1)), 1e-12)

	// Mixed dimensionality has no meaningful distance
	assert.True(t, math.IsNaN(NewPosition2D(0, 0).Distance(NewPosition3D(0, 0, 0))))
}

func TestPositionEqualsTol(t *testing.T) {
	t.Parallel()

	p := NewPosition2D(1.0, 2.0)
	assert.True(t, p.EqualsTol(NewPosition2D(1.0+1e-9, 2.0-1e-9), 1e-8))
	assert.False(t, p.EqualsTol(NewPosition2D(1.1, 2.0), 1e-8))
	assert.False(t, p.EqualsTol(NewPosition3D(1, 2, 0), 1e-8))
}

func TestPositionClone(t *testing.T) {
	t.Parallel()

	p := NewPosition3D(1, 2, 3)
	q := p.Clone()
	q[0] = 99
	assert.InDelta(t, 1.0, p[0], 0)
	assert.InDelta(t, 99.0, q[0], 0)
}

func TestPositionNormSq(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 25.0, NewPosition2D(3, 4).NormSq(), 1e-12)
	assert.InDelta(t, 0.0, NewPosition2D(0, 0).NormSq(), 0)
}

func TestPositionDims(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, NewPosition2D(0, 0).Dims())
	assert.Equal(t, 3, NewPosition3D(0, 0, 0).Dims())
}

func TestPositionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(1.0000 -2.5000)", NewPosition2D(1, -2.5).String())
}
