// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

// Implements inlier-set refinement and covariance estimation for the winning
// consensus hypothesis.

package radioloc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// finish derives the inlier set of the winning hypothesis, optionally
// re-solves over it and computes the estimate covariance, and stores the
// outputs on the estimator.
func (e *Estimator) finish(bestPos Position, bestRes []float64, cns consensus) (Position, error) {
	n := len(bestRes)
	threshold := cns.Threshold(bestRes)

	inliers := make([]bool, n)
	num := 0
	for i, r := range bestRes {
		if r <= threshold {
			inliers[i] = true
			num++
		}
	}

	// A hypothesis that cannot even explain a minimal subset carries no
	// consensus worth reporting
	if num < e.dims+1 {
		return nil, &EstimationError{
			Iterations: e.iterations,
			cause:      fmt.Errorf("winning hypothesis has only %d inliers, need %d", num, e.dims+1),
		}
	}

	final := bestPos
	var cov *mat.Dense

	// Refinement needs at least a solvable inlier set; otherwise the
	// preliminary hypothesis stands
	if e.resultRefined && num >= e.dims+1 {
		pos, dist, sd, covs := e.gatherInliers(inliers, num)
		rp, rc, err := SolveNonlinear(pos, dist, sd, covs, bestPos, e.nonlinearOptions())
		if err == nil {
			final = rp
			cov = rc
			// Residuals and inlier flags track the refined position
			e.residualsAt(final, bestRes)
			threshold = cns.Threshold(bestRes)
			num = 0
			for i, r := range bestRes {
				inliers[i] = r <= threshold
				if inliers[i] {
					num++
				}
			}
		}
	}

	if e.covarianceKept {
		if cov == nil {
			var err error
			cov, err = e.covarianceAt(final, inliers, num)
			if err != nil {
				return nil, err
			}
		}
		sym, err := toPositiveDefinite(cov)
		if err != nil {
			return nil, err
		}
		e.covariance = sym
	}

	data := &InliersData{NumInliers: num, Threshold: threshold}
	if e.computeAndKeepInliers {
		data.Inliers = inliers
	}
	if e.computeAndKeepResiduals {
		data.Residuals = append([]float64(nil), bestRes...)
	}
	e.inliersData = data
	e.estimatedPosition = final
	return final, nil
}

func (e *Estimator) gatherInliers(inliers []bool, num int) ([]Position, []float64, []float64, []*mat.SymDense) {
	pos := make([]Position, 0, num)
	dist := make([]float64, 0, num)
	sd := make([]float64, 0, num)
	covs := make([]*mat.SymDense, 0, num)
	for i, in := range inliers {
		if !in {
			continue
		}
		pos = append(pos, e.positions[i])
		dist = append(dist, e.distances[i])
		sd = append(sd, e.stddevs[i])
		covs = append(covs, e.covs[i])
	}
	return pos, dist, sd, covs
}

// covarianceAt evaluates (G^T W G)^-1 at p over the inlier readings without
// moving the estimate. Used when refinement is disabled but a covariance was
// requested.
func (e *Estimator) covarianceAt(p Position, inliers []bool, num int) (*mat.Dense, error) {
	if num < e.dims+1 {
		return nil, fmt.Errorf("not enough inliers for covariance: %d < %d", num, e.dims+1)
	}
	pos, _, sd, covs := e.gatherInliers(inliers, num)

	opt := e.nonlinearOptions()
	G := mat.NewDense(num, e.dims, nil)
	w := make([]float64, num)
	u := make([]float64, e.dims)
	for i := 0; i < num; i++ {
		ri := p.Distance(pos[i])
		if ri < minDesignDistance {
			ri = minDesignDistance
		}
		for j := 0; j < e.dims; j++ {
			u[j] = (p[j] - pos[i][j]) / ri
			G.Set(i, j, u[j])
		}
		sdv := opt.FallbackStandardDeviation
		if sd[i] > 0 {
			sdv = sd[i]
		}
		vr := SQ(sdv)
		if opt.UseSourcePositionCovariance && covs[i] != nil {
			vr += quadraticForm(covs[i], u)
		}
		w[i] = 1.0 / vr
	}

	var WG mat.Dense
	WG.Mul(mat.NewDiagDense(len(w), w), G)
	var A mat.Dense
	A.Mul(G.T(), &WG)
	var c mat.Dense
	if err := c.Inverse(&A); err != nil {
		return nil, fmt.Errorf("covariance inversion failed: %w", err)
	}
	return &c, nil
}

// toPositiveDefinite symmetrizes cov and verifies positive definiteness via
// Cholesky factorization. Failure is reported, never clamped away.
func toPositiveDefinite(cov *mat.Dense) (*mat.SymDense, error) {
	r, c := cov.Dims()
	if r != c {
		return nil, fmt.Errorf("covariance is %d x %d, want square", r, c)
	}
	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, 0.5*(cov.At(i, j)+cov.At(j, i)))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ErrCovarianceNotPositiveDefinite
	}
	return sym, nil
}

// ConfidenceRadius converts an estimate covariance into the radius of the
// sphere centered on the estimate that contains the true position with the
// given confidence, assuming Gaussian errors. Downstream accuracy reporting
// builds on this.
func ConfidenceRadius(cov mat.Symmetric, confidence float64) (float64, error) {
	if cov == nil {
		return 0, preconditionf("covariance", "must not be nil")
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, preconditionf("confidence", "must be inside (0,1), got %g", confidence)
	}
	dims := cov.SymmetricDim()
	avgVar := 0.0
	for i := 0; i < dims; i++ {
		avgVar += cov.At(i, i)
	}
	avgVar /= float64(dims)
	chi2 := distuv.ChiSquared{K: float64(dims)}
	return math.Sqrt(chi2.Quantile(confidence) * avgVar), nil
}
