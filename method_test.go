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
)

func TestMethodString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RANSAC", RANSAC.String())
	assert.Equal(t, "LMedS", LMedS.String())
	assert.Equal(t, "MSAC", MSAC.String())
	assert.Equal(t, "PROSAC", PROSAC.String())
	assert.Equal(t, "PROMedS", PROMedS.String())
	assert.Equal(t, "UNKNOWN!", Method(99).String())
}

func TestMethodSet(t *testing.T) {
	t.Parallel()

	var m Method
	require.NoError(t, m.Set("lmeds"))
	assert.Equal(t, LMedS, m)
	require.NoError(t, m.Set("PROSAC"))
	assert.Equal(t, PROSAC, m)

	err := m.Set("bogus")
	require.Error(t, err)
	var pe *PreconditionError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, PROSAC, m, "failed parse must not modify the value")
}

func TestMethodClassification(t *testing.T) {
	t.Parallel()

	assert.False(t, RANSAC.Prioritized())
	assert.False(t, LMedS.Prioritized())
	assert.False(t, MSAC.Prioritized())
	assert.True(t, PROSAC.Prioritized())
	assert.True(t, PROMedS.Prioritized())

	assert.True(t, RANSAC.thresholdBased())
	assert.True(t, MSAC.thresholdBased())
	assert.True(t, PROSAC.thresholdBased())
	assert.False(t, LMedS.thresholdBased())
	assert.False(t, PROMedS.thresholdBased())
}

func TestNewEstimatorDefaultMethod(t *testing.T) {
	t.Parallel()

	// Without quality scores the plain threshold method is the default
	e, err := NewEstimator(2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, RANSAC, e.Method())

	// Quality scores select the prioritized median method
	e, err = NewEstimator(2, []float64{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, PROMedS, e.Method())
	assert.Equal(t, []float64{1, 2, 3}, e.SourceQualityScores())

	e, err = NewEstimator(3, nil, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, PROMedS, e.Method())
	assert.Equal(t, []float64{1, 2, 3, 4}, e.FingerprintReadingsQualityScores())

	_, err = NewEstimator(1, nil, nil)
	assert.Error(t, err)
}

func TestEstimatorDefaults(t *testing.T) {
	t.Parallel()

	e, err := NewEstimatorForMethod(MSAC, 2)
	require.NoError(t, err)

	assert.Equal(t, MSAC, e.Method())
	assert.Equal(t, 2, e.NumberOfDimensions())
	assert.InDelta(t, DefaultThreshold, e.Threshold(), 0)
	assert.InDelta(t, DefaultStopThreshold, e.StopThreshold(), 0)
	assert.InDelta(t, DefaultConfidence, e.Confidence(), 0)
	assert.Equal(t, DefaultMaxIterations, e.MaxIterations())
	assert.InDelta(t, DefaultProgressDelta, e.ProgressDelta(), 0)
	assert.True(t, e.IsResultRefined())
	assert.True(t, e.IsCovarianceKept())
	assert.True(t, e.IsLinearSolverUsed())
	assert.False(t, e.IsHomogeneousLinearSolverUsed())
	assert.False(t, e.IsPreliminarySolutionRefined())
	assert.False(t, e.IsRadioSourcePositionCovarianceUsed())
	assert.False(t, e.IsEvenlyDistributeReadings())
	assert.InDelta(t, DefaultFallbackDistanceStandardDeviation, e.FallbackDistanceStandardDeviation(), 0)
}
