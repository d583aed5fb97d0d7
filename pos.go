// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"fmt"
	"math"
	"strings"
)

//-------------------------------------------------------------------
// Position
//-------------------------------------------------------------------

// Position is a point in N dimensions (N = 2 or 3). Coordinates are in
// meters in whatever local frame the radio source positions use.
type Position []float64

func NewPosition2D(x, y float64) Position {
	return Position{x, y}
}

func NewPosition3D(x, y, z float64) Position {
	return Position{x, y, z}
}

// Dims returns the number of coordinates.
func (p Position) Dims() int {
	return len(p)
}

// Distance returns the Euclidean distance to q. Positions of different
// dimensionality have no meaningful distance; NaN is returned.
func (p Position) Distance(q Position) float64 {
	if len(p) != len(q) {
		return math.NaN()
	}
	s := 0.0
	for i := range p {
		s += SQ(p[i] - q[i])
	}
	return math.Sqrt(s)
}

// EqualsTol reports whether every coordinate of q is within tol of the
// corresponding coordinate of p.
func (p Position) EqualsTol(q Position, tol float64) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if math.Abs(p[i]-q[i]) > tol {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p Position) Clone() Position {
	q := make(Position, len(p))
	copy(q, p)
	return q
}

// NormSq returns the squared Euclidean norm.
func (p Position) NormSq() float64 {
	s := 0.0
	for _, v := range p {
		s += v * v
	}
	return s
}

func (p Position) String() string {
	f := make([]string, len(p))
	for i, v := range p {
		f[i] = fmt.Sprintf("%.4f", v)
	}
	return "(" + strings.Join(f, " ") + ")"
}
