// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDistinctInRange(t *testing.T, subset []int, n int) {
	t.Helper()
	seen := map[int]bool{}
	for _, i := range subset {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, n)
		assert.False(t, seen[i], "duplicate index %d in %v", i, subset)
		seen[i] = true
	}
}

func TestUniformSampler(t *testing.T) {
	t.Parallel()

	const n, k = 10, 4
	s := newUniformSampler(rand.New(rand.NewSource(1)), n)
	out := make([]int, k)
	covered := map[int]bool{}
	for iter := 0; iter < 200; iter++ {
		s.Sample(iter, out)
		assertDistinctInRange(t, out, n)
		for _, i := range out {
			covered[i] = true
		}
	}
	// Every reading must be reachable
	assert.Len(t, covered, n)
}

func TestSpreadSampler(t *testing.T) {
	t.Parallel()

	// 4 sources with 3 readings each; subsets of 4 must draw one reading
	// from every source
	groups := [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9, 10, 11}}
	s := newSpreadSampler(rand.New(rand.NewSource(2)), groups)
	out := make([]int, 4)
	for iter := 0; iter < 100; iter++ {
		s.Sample(iter, out)
		assertDistinctInRange(t, out, 12)
		sources := map[int]bool{}
		for _, i := range out {
			sources[i/3] = true
		}
		assert.Len(t, sources, 4, "subset %v does not cover all sources", out)
	}

	// Subsets larger than the source count revisit sources only after every
	// source contributed one reading
	big := make([]int, 6)
	for iter := 0; iter < 100; iter++ {
		s.Sample(iter, big)
		assertDistinctInRange(t, big, 12)
		counts := map[int]int{}
		for _, i := range big {
			counts[i/3]++
		}
		assert.Len(t, counts, 4)
		for src, c := range counts {
			assert.LessOrEqual(t, c, 2, "source %d drawn %d times in %v", src, c, big)
		}
	}
}

func TestProsacSampler(t *testing.T) {
	t.Parallel()

	qualities := []float64{0.1, 0.9, 0.5, 0.7, 0.2, 0.8, 0.3, 0.6, 0.4, 1.0}
	const k, maxIter = 3, 1000
	s := newProsacSampler(rand.New(rand.NewSource(3)), qualities, k, maxIter)

	// Quality order: index 9 (1.0), 1 (0.9), 5 (0.8), 3 (0.7), ...
	assert.Equal(t, []int{9, 1, 5, 3, 7, 2, 8, 6, 4, 0}, s.sorted)

	t.Run("prefix grows monotonically", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, k, s.prefixSize(0), "first draw uses the top subset")
		prev := 0
		for iter := 0; iter < maxIter; iter++ {
			p := s.prefixSize(iter)
			assert.GreaterOrEqual(t, p, k)
			assert.GreaterOrEqual(t, p, prev)
			assert.LessOrEqual(t, p, len(qualities))
			prev = p
		}
		assert.Equal(t, len(qualities), s.prefixSize(maxIter-1),
			"full range must be reached within the budget")
	})

	t.Run("growth schedule follows the expected draw counts", func(t *testing.T) {
		t.Parallel()
		growth := prosacGrowthSchedule(10, 3, maxIter)
		require.Len(t, growth, 8)
		assert.Equal(t, 1, growth[0])
		for i := 1; i < len(growth); i++ {
			assert.Greater(t, growth[i], growth[i-1])
		}
		assert.LessOrEqual(t, growth[len(growth)-1], maxIter)
	})

	t.Run("subsets stay in the quality prefix", func(t *testing.T) {
		out := make([]int, k)
		for iter := 0; iter < maxIter; iter++ {
			s.Sample(iter, out)
			assertDistinctInRange(t, out, len(qualities))
			prefix := s.prefixSize(iter)
			inPrefix := map[int]bool{}
			for _, i := range s.sorted[:prefix] {
				inPrefix[i] = true
			}
			for _, i := range out {
				assert.True(t, inPrefix[i], "iter %d: index %d outside prefix %d", iter, i, prefix)
			}
			if prefix > k {
				assert.Contains(t, out, s.sorted[prefix-1],
					"iter %d: boundary element missing from %v", iter, out)
			}
		}
	})

	t.Run("draws vary after the first iteration", func(t *testing.T) {
		t.Parallel()
		vs := newProsacSampler(rand.New(rand.NewSource(7)), qualities, k, maxIter)
		out := make([]int, k)
		seen := map[[3]int]bool{}
		for iter := 1; iter <= 30; iter++ {
			vs.Sample(iter, out)
			key := [3]int{out[0], out[1], out[2]}
			sort.Ints(key[:])
			seen[key] = true
		}
		assert.Greater(t, len(seen), 1, "consecutive draws must not repeat one fixed subset")
	})
}

func TestWeightedSampler(t *testing.T) {
	t.Parallel()

	// Index 0 carries almost all of the mass
	qualities := []float64{1000, 1, 1, 1, 1, 1}
	s := newWeightedSampler(rand.New(rand.NewSource(4)), qualities)
	out := make([]int, 3)
	with0 := 0
	const trials = 500
	for iter := 0; iter < trials; iter++ {
		s.Sample(iter, out)
		assertDistinctInRange(t, out, len(qualities))
		for _, i := range out {
			if i == 0 {
				with0++
			}
		}
	}
	// P(subset misses index 0) is well under 1%
	assert.Greater(t, with0, trials*9/10, "high quality reading sampled in %d/%d subsets", with0, trials)
}

func TestWeightedSamplerZeroWeights(t *testing.T) {
	t.Parallel()

	// Zero and negative scores are floored, not dropped: sampling still
	// terminates and every index stays reachable
	qualities := []float64{0, 0, 0, 0}
	s := newWeightedSampler(rand.New(rand.NewSource(5)), qualities)
	out := make([]int, 3)
	for iter := 0; iter < 50; iter++ {
		s.Sample(iter, out)
		assertDistinctInRange(t, out, len(qualities))
	}
}

func TestSortedByQuality(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{2, 0, 1}, sortedByQuality([]float64{0.5, 0.1, 0.9}))
	// Stable for ties
	assert.Equal(t, []int{0, 1, 2}, sortedByQuality([]float64{0.5, 0.5, 0.5}))
	require.Empty(t, sortedByQuality(nil))
}
