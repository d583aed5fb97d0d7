// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

// Implements lateration: computing a position from distances to known points.

package radioloc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Distances below this are clamped before dividing by them when building
// design matrix rows.
const minDesignDistance = 1e-12

// MinRequiredReadings returns the smallest subset that determines a position
// in dims dimensions. The inhomogeneous linearization eliminates the
// quadratic term against a reference reading and needs dims+1 readings; the
// homogeneous formulation keeps it as an extra unknown and needs one more.
func MinRequiredReadings(dims int, homogeneous bool) int {
	if homogeneous {
		return dims + 2
	}
	return dims + 1
}

//-------------------------------------------------------------------
// Linear solver
//-------------------------------------------------------------------

// SolveLinear computes a position from sphere equations in closed form.
// All positions must share the same dimensionality and len(distances) must
// equal len(positions). Degenerate geometry (collinear/coplanar sources)
// surfaces as a solve error; callers running consensus loops treat it as an
// unusable subset rather than a fatal condition.
func SolveLinear(positions []Position, distances []float64, homogeneous bool) (Position, error) {
	n := len(positions)
	if n == 0 {
		return nil, fmt.Errorf("no readings")
	}
	if n != len(distances) {
		return nil, fmt.Errorf("positions(%d) and distances(%d) differ in length", n, len(distances))
	}
	dims := positions[0].Dims()
	if need := MinRequiredReadings(dims, homogeneous); n < need {
		return nil, fmt.Errorf("not enough readings: %d < %d", n, need)
	}

	if homogeneous {
		return solveLinearHomogeneous(positions, distances, dims)
	}
	return solveLinearInhomogeneous(positions, distances, dims)
}

// solveLinearInhomogeneous subtracts the last sphere equation from every
// other one, which cancels the quadratic term:
//
//	2 (s_ref - s_i) . p = d_i^2 - d_ref^2 - |s_i|^2 + |s_ref|^2
//
// and solves the resulting linear system in the least squares sense.
func solveLinearInhomogeneous(positions []Position, distances []float64, dims int) (Position, error) {
	n := len(positions)
	ref := positions[n-1]
	refDistSq := SQ(math.Max(distances[n-1], 0))
	refNormSq := ref.NormSq()

	rows := n - 1
	A := mat.NewDense(rows, dims, nil)
	b := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		s := positions[i]
		for j := 0; j < dims; j++ {
			A.Set(i, j, 2.0*(ref[j]-s[j]))
		}
		b.SetVec(i, SQ(math.Max(distances[i], 0))-refDistSq-s.NormSq()+refNormSq)
	}

	x, err := SolveQR(A, b)
	if err != nil {
		return nil, err
	}
	p := make(Position, dims)
	for j := 0; j < dims; j++ {
		p[j] = x.AtVec(j)
	}
	if !allFinite(p) {
		return nil, fmt.Errorf("degenerate geometry: non-finite solution")
	}
	return p, nil
}

// solveLinearHomogeneous keeps the quadratic term as an extra homogeneous
// unknown v ~ (1, p, |p|^2):
//
//	(|s_i|^2 - d_i^2) v0 - 2 s_i . v_(1..dims) + v_(dims+1) = 0
//
// The null vector of the stacked system is recovered from the smallest
// singular vector.
func solveLinearHomogeneous(positions []Position, distances []float64, dims int) (Position, error) {
	n := len(positions)
	cols := dims + 2
	M := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		s := positions[i]
		d := math.Max(distances[i], 0)
		M.Set(i, 0, s.NormSq()-SQ(d))
		for j := 0; j < dims; j++ {
			M.Set(i, 1+j, -2.0*s[j])
		}
		M.Set(i, cols-1, 1.0)
	}

	var svd mat.SVD
	if ok := svd.Factorize(M, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	_, vc := v.Dims()
	// Smallest singular vector is the last column of V
	v0 := v.At(0, vc-1)
	if math.Abs(v0) < 1e-12 {
		return nil, fmt.Errorf("degenerate geometry: homogeneous scale is zero")
	}
	p := make(Position, dims)
	for j := 0; j < dims; j++ {
		p[j] = v.At(1+j, vc-1) / v0
	}
	if !allFinite(p) {
		return nil, fmt.Errorf("degenerate geometry: non-finite solution")
	}
	return p, nil
}

//-------------------------------------------------------------------
// Nonlinear solver
//-------------------------------------------------------------------

// NonlinearOptions controls the iterative weighted least squares refinement.
type NonlinearOptions struct {
	MaxIterations               int     // Maximum number of Gauss-Newton iterations
	ConvergenceThreshold        float64 // Stop when every position update component falls below this [m]
	FallbackStandardDeviation   float64 // Applied to readings with no standard deviation
	UseSourcePositionCovariance bool    // Inflate reading variance by the source position covariance
}

// NewNonlinearOptions creates options with library defaults.
func NewNonlinearOptions() *NonlinearOptions {
	return &NonlinearOptions{
		MaxIterations:             DefaultSolverMaxIterations,
		ConvergenceThreshold:      DefaultSolverConvergenceThreshold,
		FallbackStandardDeviation: DefaultFallbackDistanceStandardDeviation,
	}
}

// SolveNonlinear refines a position estimate by iterating linearized
// weighted least squares over the distance residuals:
//
//	dr_i = d_i - |p - s_i|,  G_i = (p - s_i)^T / |p - s_i|
//
// seeded at initial (the centroid of the sources when initial is nil).
// stddevs may be nil (fallback applies everywhere); covs may be nil or hold
// nil entries for sources with exact positions. Returns the refined position
// and the unscaled estimate covariance (G^T W G)^-1.
func SolveNonlinear(positions []Position, distances, stddevs []float64,
	covs []*mat.SymDense, initial Position, opt *NonlinearOptions) (Position, *mat.Dense, error) {

	n := len(positions)
	if n == 0 {
		return nil, nil, fmt.Errorf("no readings")
	}
	if n != len(distances) {
		return nil, nil, fmt.Errorf("positions(%d) and distances(%d) differ in length", n, len(distances))
	}
	dims := positions[0].Dims()
	if n < dims+1 {
		return nil, nil, fmt.Errorf("not enough readings: %d < %d", n, dims+1)
	}
	if opt == nil {
		opt = NewNonlinearOptions()
	}

	p := centroid(positions)
	if initial != nil {
		if initial.Dims() != dims {
			return nil, nil, fmt.Errorf("initial position has %d dimensions, want %d", initial.Dims(), dims)
		}
		p = initial.Clone()
	}

	G := mat.NewDense(n, dims, nil)
	dr := mat.NewVecDense(n, nil)
	w := make([]float64, n)
	u := make([]float64, dims)
	var cov *mat.Dense

	for loop := 0; loop < opt.MaxIterations; loop++ {
		for i := 0; i < n; i++ {
			s := positions[i]
			ri := p.Distance(s)
			if ri < minDesignDistance {
				ri = minDesignDistance
			}
			for j := 0; j < dims; j++ {
				u[j] = (p[j] - s[j]) / ri
				G.Set(i, j, u[j])
			}
			dr.SetVec(i, distances[i]-ri)

			// Reading variance, with the source position uncertainty projected
			// onto the line of sight when requested
			sd := opt.FallbackStandardDeviation
			if stddevs != nil && stddevs[i] > 0 {
				sd = stddevs[i]
			}
			vr := SQ(sd)
			if opt.UseSourcePositionCovariance && covs != nil && covs[i] != nil {
				vr += quadraticForm(covs[i], u)
			}
			w[i] = 1.0 / vr
		}

		dx, c, err := SolveWLS(G, dr, w)
		if err != nil {
			return nil, nil, fmt.Errorf("nonlinear lateration solve failed: %w", err)
		}
		cov = c

		for j := 0; j < dims; j++ {
			p[j] += dx.AtVec(j)
		}
		if maxAbsVec(dx) < opt.ConvergenceThreshold {
			break
		}
	}

	if !allFinite(p) {
		return nil, nil, fmt.Errorf("nonlinear lateration diverged")
	}
	return p, cov, nil
}

func centroid(positions []Position) Position {
	dims := positions[0].Dims()
	c := make(Position, dims)
	for _, s := range positions {
		for j := 0; j < dims; j++ {
			c[j] += s[j]
		}
	}
	for j := 0; j < dims; j++ {
		c[j] /= float64(len(positions))
	}
	return c
}

// quadraticForm computes u^T C u.
func quadraticForm(C *mat.SymDense, u []float64) float64 {
	n := C.SymmetricDim()
	s := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s += u[i] * C.At(i, j) * u[j]
		}
	}
	return s
}

func maxAbsVec(v mat.Vector) float64 {
	m := 0.0
	for i := 0; i < v.Len(); i++ {
		if a := math.Abs(v.AtVec(i)); a > m {
			m = a
		}
	}
	return m
}

func allFinite(p Position) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
