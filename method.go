// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

// Method selects the robust consensus strategy used by an Estimator.
type Method int

const (
	RANSAC Method = iota
	LMedS
	MSAC
	PROSAC
	PROMedS
)

func (m Method) String() string {
	switch m {
	case RANSAC:
		return "RANSAC"
	case LMedS:
		return "LMedS"
	case MSAC:
		return "MSAC"
	case PROSAC:
		return "PROSAC"
	case PROMedS:
		return "PROMedS"
	default:
		return "UNKNOWN!"
	}
}

// Prioritized reports whether the method biases subset sampling by quality
// scores.
func (m Method) Prioritized() bool {
	return m == PROSAC || m == PROMedS
}

// thresholdBased reports whether the method uses a fixed inlier residual
// threshold (as opposed to deriving one from the median residual).
func (m Method) thresholdBased() bool {
	return m == RANSAC || m == MSAC || m == PROSAC
}

// Set parses a method name (for command argument parsing).
func (m *Method) Set(s string) error {
	switch s {
	case "RANSAC", "ransac":
		*m = RANSAC
	case "LMedS", "lmeds":
		*m = LMedS
	case "MSAC", "msac":
		*m = MSAC
	case "PROSAC", "prosac":
		*m = PROSAC
	case "PROMedS", "promeds":
		*m = PROMedS
	default:
		return preconditionf("method", "unknown method %q", s)
	}
	return nil
}

// NewEstimatorForMethod creates an estimator for dims dimensions (2 or 3)
// using the given consensus method.
func NewEstimatorForMethod(method Method, dims int) (*Estimator, error) {
	return newEstimator(method, dims)
}

// NewEstimator creates an estimator with the default method selection: the
// quality-score-prioritized variant when quality scores are supplied,
// otherwise RANSAC. The score arrays (either may be nil) are carried into
// the estimator and validated against sources/fingerprint once those are
// set.
func NewEstimator(dims int, sourceQualityScores, readingQualityScores []float64) (*Estimator, error) {
	method := RANSAC
	if sourceQualityScores != nil || readingQualityScores != nil {
		method = PROMedS
	}
	e, err := newEstimator(method, dims)
	if err != nil {
		return nil, err
	}
	e.sourceQualityScores = sourceQualityScores
	e.readingQualityScores = readingQualityScores
	return e, nil
}
