// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

// Implements the per-method hypothesis scoring strategies.

package radioloc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// consensus scores one candidate position against the absolute residuals of
// every reading in the fingerprint. Scores are comparable within one method
// only; lower is better.
type consensus interface {
	// Score returns the comparable score of a hypothesis.
	Score(res []float64) float64
	// Threshold returns the inlier residual cutoff to apply once a best
	// hypothesis has been chosen with the given residuals.
	Threshold(res []float64) float64
}

//-------------------------------------------------------------------
// RANSAC
//-------------------------------------------------------------------

// ransacConsensus maximizes the count of residuals below a fixed threshold.
type ransacConsensus struct {
	threshold float64
}

func (c *ransacConsensus) Score(res []float64) float64 {
	count := 0
	for _, r := range res {
		if r <= c.threshold {
			count++
		}
	}
	return -float64(count)
}

func (c *ransacConsensus) Threshold([]float64) float64 {
	return c.threshold
}

//-------------------------------------------------------------------
// MSAC
//-------------------------------------------------------------------

// msacConsensus minimizes the sum of capped squared residuals: outliers
// contribute the constant threshold^2 penalty instead of their magnitude.
type msacConsensus struct {
	threshold float64
}

func (c *msacConsensus) Score(res []float64) float64 {
	cap2 := SQ(c.threshold)
	sum := 0.0
	for _, r := range res {
		r2 := SQ(r)
		if r2 > cap2 {
			r2 = cap2
		}
		sum += r2
	}
	return sum
}

func (c *msacConsensus) Threshold([]float64) float64 {
	return c.threshold
}

//-------------------------------------------------------------------
// LMedS / PROMedS
//-------------------------------------------------------------------

// lmedsConsensus minimizes the median of squared residuals. The inlier
// threshold is derived post hoc from the best median through the standard
// robust scale estimate, with a small sample correction for n-k degrees of
// freedom. PROMedS scores identically; only its sampling differs.
type lmedsConsensus struct {
	subsetSize int
	scratch    []float64
}

func (c *lmedsConsensus) Score(res []float64) float64 {
	if cap(c.scratch) < len(res) {
		c.scratch = make([]float64, len(res))
	}
	sq := c.scratch[:len(res)]
	for i, r := range res {
		sq[i] = SQ(r)
	}
	sort.Float64s(sq)
	return stat.Quantile(0.5, stat.Empirical, sq, nil)
}

func (c *lmedsConsensus) Threshold(res []float64) float64 {
	med := c.Score(res)
	dof := len(res) - c.subsetSize
	if dof < 1 {
		dof = 1
	}
	sigma := MadScale * (1.0 + LmedsCorrection/float64(dof)) * math.Sqrt(med)
	thr := InlierFactor * sigma
	// Exact readings drive the median to numerical zero; keep a floor so the
	// inlier classification stays meaningful
	if thr < MinInlierThreshold {
		thr = MinInlierThreshold
	}
	return thr
}

//-------------------------------------------------------------------
// PROSAC
//-------------------------------------------------------------------

// prosacConsensus counts inliers over the quality-sorted prefix currently
// eligible for sampling, falling back to the full count as a tie break. The
// engine advances the prefix in lockstep with the PROSAC sampler.
type prosacConsensus struct {
	threshold float64
	sorted    []int // reading indices in descending quality order
	prefix    int   // current prefix length, engine managed
}

func (c *prosacConsensus) Score(res []float64) float64 {
	inPrefix := 0
	for _, i := range c.sorted[:c.prefix] {
		if res[i] <= c.threshold {
			inPrefix++
		}
	}
	total := 0
	for _, r := range res {
		if r <= c.threshold {
			total++
		}
	}
	// Prefix consensus dominates, full consensus breaks ties
	return -(float64(inPrefix)*float64(len(res)+1) + float64(total))
}

func (c *prosacConsensus) Threshold([]float64) float64 {
	return c.threshold
}
