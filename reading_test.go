// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRadioSource(t *testing.T) {
	t.Parallel()

	a := NewRadioSource(NewPosition2D(1, 2))
	b := NewRadioSource(NewPosition2D(1, 2))
	assert.NotEqual(t, a.ID, b.ID, "sources must get distinct identifiers")
	assert.Nil(t, a.PositionCovariance)
}

func TestNewRadioSourceWithCovariance(t *testing.T) {
	t.Parallel()

	cov := mat.NewSymDense(2, []float64{0.1, 0, 0, 0.1})
	src, err := NewRadioSourceWithCovariance(NewPosition2D(1, 2), cov)
	require.NoError(t, err)
	assert.Same(t, cov, src.PositionCovariance)

	// Covariance size must match the position dimensionality
	_, err = NewRadioSourceWithCovariance(NewPosition3D(1, 2, 3), cov)
	require.Error(t, err)
	var pe *PreconditionError
	assert.ErrorAs(t, err, &pe)

	// nil covariance means an exact position
	src, err = NewRadioSourceWithCovariance(NewPosition2D(1, 2), nil)
	require.NoError(t, err)
	assert.Nil(t, src.PositionCovariance)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := NewRadioSource(NewPosition2D(0, 0))
	b := NewRadioSource(NewPosition2D(5, 0))

	fp := NewFingerprint()
	assert.Equal(t, 0, fp.Len())

	fp.Add(NewReading(a, 1.0, 0.1))
	fp.Add(NewReading(b, 2.0, 0.1))
	fp.Add(NewReading(a, 1.1, 0.1)) // second reading of the same source
	assert.Equal(t, 3, fp.Len())
	assert.Equal(t, 2, fp.DistinctSources())

	// Order is preserved
	assert.InDelta(t, 1.0, fp.Readings[0].Distance, 0)
	assert.InDelta(t, 2.0, fp.Readings[1].Distance, 0)
	assert.InDelta(t, 1.1, fp.Readings[2].Distance, 0)
}

func TestPathLossModel(t *testing.T) {
	t.Parallel()

	m := NewPathLossModel()

	t.Run("reference distance", func(t *testing.T) {
		t.Parallel()
		d, sd := m.DistanceFromRSSI(m.TxPower)
		assert.InDelta(t, m.ReferenceDistance, d, 1e-12)
		assert.Greater(t, sd, 0.0)
	})

	t.Run("20 dB is one decade at exponent 2", func(t *testing.T) {
		t.Parallel()
		d, _ := m.DistanceFromRSSI(m.TxPower - 20)
		assert.InDelta(t, 10.0*m.ReferenceDistance, d, 1e-9)
	})

	t.Run("uncertainty grows with distance", func(t *testing.T) {
		t.Parallel()
		_, sdNear := m.DistanceFromRSSI(m.TxPower - 10)
		_, sdFar := m.DistanceFromRSSI(m.TxPower - 30)
		assert.Greater(t, sdFar, sdNear)
	})

	t.Run("reading from rssi", func(t *testing.T) {
		t.Parallel()
		src := NewRadioSource(NewPosition2D(0, 0))
		r := m.ReadingFromRSSI(src, m.TxPower-20)
		assert.Same(t, src, r.Source)
		assert.InDelta(t, 10.0, r.Distance, 1e-9)
		assert.Greater(t, r.StandardDeviation, 0.0)
	})
}
