// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

// Default estimator parameters. These are tuned for typical indoor RF
// positioning with meter-scale distances.
const (
	DefaultConfidence    = 0.99   // Probability that at least one subset is outlier free
	DefaultMaxIterations = 5000   // Hard cap on consensus iterations
	DefaultProgressDelta = 0.05   // Progress notification step
	DefaultThreshold     = 1.0    // Inlier residual threshold [m] (RANSAC/MSAC/PROSAC)
	DefaultStopThreshold = 1.0e-4 // Median residual early stop [m^2] (LMedS/PROMedS)

	// Standard deviation assumed for a reading that carries none
	DefaultFallbackDistanceStandardDeviation = 1.0e-3

	// Floor applied to least squares weights to keep the normal equations sane
	MinWeight = 1.0e-6
)

// Nonlinear solver defaults (Gauss-Newton loop)
const (
	DefaultSolverMaxIterations        = 50    // Maximum number of iteration loops
	DefaultSolverConvergenceThreshold = 1e-10 // Convergence threshold on position update [m]
)

// LMedS robust scale estimate constants.
// sigma = MAD_SCALE * (1 + LMEDS_CORRECTION/(n-k)) * sqrt(median of squared residuals)
const (
	MadScale        = 1.4826 // Consistency factor for Gaussian noise
	LmedsCorrection = 5.0    // Small sample correction numerator
	InlierFactor    = 2.5    // Inliers fall within InlierFactor * sigma

	// Floor for the derived inlier threshold; exact readings drive the
	// median residual to numerical zero
	MinInlierThreshold = 1.0e-9
)
