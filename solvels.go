// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Solve the observation equation using weighted least squares
// - dx = (G^t W G)^-1 G^t W dr
// - Return the error covariance matrix (G^t W G)^-1 as cov
//
// W is diagonal, given as a weight per equation (1/sigma^2). Weights below
// MinWeight are floored so that a single degenerate reading cannot zero out
// the normal equations.
func SolveWLS(G mat.Matrix, dr mat.Vector, w []float64) (dx mat.Vector, cov *mat.Dense, err error) {

	n, nx := G.Dims()
	if n != dr.Len() {
		return nil, nil, fmt.Errorf("invalid matrix size. G(%d x %d), dr(%d x 1)", n, nx, dr.Len())
	}
	if n != len(w) {
		return nil, nil, fmt.Errorf("invalid matrix size. G(%d x %d), w(%d)", n, nx, len(w))
	}

	w2 := make([]float64, len(w))
	for i, v := range w {
		if v < MinWeight {
			v = MinWeight
		}
		w2[i] = v
	}
	W := mat.NewDiagDense(len(w2), w2)

	// A (G^t W G)
	var WG mat.Dense
	WG.Mul(W, G)
	var A mat.Dense
	A.Mul(G.T(), &WG)

	// b (G^t W dr)
	var GtW mat.Dense
	GtW.Mul(G.T(), W)
	var b mat.VecDense
	b.MulVec(&GtW, dr)

	// Solve for x (x = A^-1 b)
	var x mat.VecDense
	err = x.SolveVec(&A, &b)
	if err != nil {
		return nil, nil, err
	}
	dx = &x

	// Set (G^T W G)^-1 as the covariance matrix
	var c mat.Dense
	err = c.Inverse(&A)
	if err != nil {
		return nil, nil, err
	}
	cov = &c

	return
}

// SolveQR solves min ||A x - b|| via QR decomposition. Used by the linear
// closed-form lateration where forming the normal equations would worsen
// conditioning.
func SolveQR(A *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	var qr mat.QR
	qr.Factorize(A)

	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return nil, fmt.Errorf("QR least squares solve failed: %w", err)
	}
	return &x, nil
}
