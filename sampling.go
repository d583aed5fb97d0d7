// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

// Implements preliminary subset sampling for the consensus engine.

package radioloc

import (
	"math"
	"math/rand"
	"sort"
)

// subsetSampler draws one preliminary subset of distinct reading indices per
// consensus iteration. Implementations own their scratch buffers and are not
// safe for concurrent use; the engine is single threaded by contract.
type subsetSampler interface {
	// Sample fills out with len(out) distinct reading indices for the given
	// iteration counter.
	Sample(iter int, out []int)
}

//-------------------------------------------------------------------
// Uniform sampler
//-------------------------------------------------------------------

// uniformSampler draws subsets uniformly at random (RANSAC, LMedS, MSAC).
type uniformSampler struct {
	rnd *rand.Rand
	idx []int
}

func newUniformSampler(rnd *rand.Rand, n int) *uniformSampler {
	s := &uniformSampler{rnd: rnd, idx: make([]int, n)}
	for i := range s.idx {
		s.idx[i] = i
	}
	return s
}

func (s *uniformSampler) Sample(_ int, out []int) {
	// Partial Fisher-Yates over the persistent index buffer
	n := len(s.idx)
	for j := range out {
		t := j + s.rnd.Intn(n-j)
		s.idx[j], s.idx[t] = s.idx[t], s.idx[j]
		out[j] = s.idx[j]
	}
}

//-------------------------------------------------------------------
// Spread sampler
//-------------------------------------------------------------------

// spreadSampler implements the "evenly distribute readings" policy: the
// subset is spread across distinct sources first, allowing repeated sources
// only once every source already contributes a reading.
type spreadSampler struct {
	rnd    *rand.Rand
	groups [][]int // reading indices per distinct source
	order  []int
}

func newSpreadSampler(rnd *rand.Rand, groups [][]int) *spreadSampler {
	s := &spreadSampler{rnd: rnd, groups: groups, order: make([]int, len(groups))}
	for i := range s.order {
		s.order[i] = i
	}
	return s
}

func (s *spreadSampler) Sample(_ int, out []int) {
	s.rnd.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	for _, g := range s.groups {
		s.rnd.Shuffle(len(g), func(i, j int) {
			g[i], g[j] = g[j], g[i]
		})
	}
	filled := 0
	for round := 0; filled < len(out); round++ {
		progressed := false
		for _, gi := range s.order {
			g := s.groups[gi]
			if round >= len(g) {
				continue
			}
			out[filled] = g[round]
			filled++
			progressed = true
			if filled == len(out) {
				break
			}
		}
		if !progressed {
			break
		}
	}
}

//-------------------------------------------------------------------
// PROSAC sampler
//-------------------------------------------------------------------

// prosacSampler draws from a growing prefix of the quality-sorted readings.
// Early iterations only see the highest quality readings; the low quality
// tail joins as the iteration counter advances. Each draw deterministically
// includes the newest member of the prefix, matching the PROSAC growth
// discipline.
type prosacSampler struct {
	rnd        *rand.Rand
	sorted     []int // reading indices in descending quality order
	subsetSize int
	growth     []int // first draw number unlocking each successive prefix size
	scratch    []int
}

func newProsacSampler(rnd *rand.Rand, qualities []float64, subsetSize, maxIterations int) *prosacSampler {
	n := len(qualities)
	return &prosacSampler{
		rnd:        rnd,
		sorted:     sortedByQuality(qualities),
		subsetSize: subsetSize,
		growth:     prosacGrowthSchedule(n, subsetSize, maxIterations),
		scratch:    make([]int, n),
	}
}

// prosacGrowthSchedule returns, for each prefix size k+i, the first draw
// number (1-based) at which that prefix becomes eligible, following the
// T'_n recurrence of Chum and Matas: T_n is the expected count, among
// maxIterations uniform draws, of subsets made only of the n highest
// quality readings, with T_{n+1} = T_n (n+1)/(n+1-k); prefixes unlock as
// the draw counter crosses the ceil-accumulated differences.
func prosacGrowthSchedule(n, k, maxIterations int) []int {
	if n <= k {
		return []int{1}
	}
	growth := make([]int, 0, n-k+1)
	growth = append(growth, 1)
	// T_k = maxIterations / C(n,k)
	tn := float64(maxIterations)
	for i := 0; i < k; i++ {
		tn *= float64(k-i) / float64(n-i)
	}
	tPrime := 1.0
	for m := k; m < n; m++ {
		tn1 := tn * float64(m+1) / float64(m+1-k)
		tPrime += math.Ceil(tn1 - tn)
		tn = tn1
		growth = append(growth, int(tPrime))
	}
	return growth
}

// prefixSize returns the number of quality-sorted readings eligible at iter.
// The fully deterministic top subset is drawn exactly once; from the second
// draw on the prefix holds at least one extra element so consecutive draws
// vary.
func (s *prosacSampler) prefixSize(iter int) int {
	n := len(s.sorted)
	t := iter + 1
	eligible := sort.SearchInts(s.growth, t+1) // schedule entries <= t
	p := s.subsetSize - 1 + eligible
	if iter > 0 && p == s.subsetSize {
		p++
	}
	if p > n {
		p = n
	}
	return p
}

func (s *prosacSampler) Sample(iter int, out []int) {
	k := len(out)
	prefix := s.prefixSize(iter)
	if prefix <= k {
		copy(out, s.sorted[:k])
		return
	}
	// Always include the prefix boundary element, draw the rest uniformly
	// from the elements above it
	out[k-1] = s.sorted[prefix-1]
	pool := s.scratch[:prefix-1]
	copy(pool, s.sorted[:prefix-1])
	for j := 0; j < k-1; j++ {
		t := j + s.rnd.Intn(len(pool)-j)
		pool[j], pool[t] = pool[t], pool[j]
		out[j] = pool[j]
	}
}

//-------------------------------------------------------------------
// Quality weighted sampler
//-------------------------------------------------------------------

// weightedSampler draws each subset member with probability proportional to
// its quality score (PROMedS).
type weightedSampler struct {
	rnd  *rand.Rand
	cumw []float64
	used []bool
}

func newWeightedSampler(rnd *rand.Rand, qualities []float64) *weightedSampler {
	cum := make([]float64, len(qualities))
	total := 0.0
	for i, q := range qualities {
		if q <= 0 {
			q = MinWeight
		}
		total += q
		cum[i] = total
	}
	return &weightedSampler{rnd: rnd, cumw: cum, used: make([]bool, len(qualities))}
}

func (s *weightedSampler) Sample(_ int, out []int) {
	for i := range s.used {
		s.used[i] = false
	}
	total := s.cumw[len(s.cumw)-1]
	for j := 0; j < len(out); {
		r := s.rnd.Float64() * total
		i := sort.SearchFloat64s(s.cumw, r)
		if i >= len(s.cumw) {
			i = len(s.cumw) - 1
		}
		if s.used[i] {
			continue // redraw duplicates
		}
		s.used[i] = true
		out[j] = i
		j++
	}
}

// sortedByQuality returns reading indices ordered by descending quality.
func sortedByQuality(qualities []float64) []int {
	idx := make([]int, len(qualities))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return qualities[idx[a]] > qualities[idx[b]]
	})
	return idx
}
