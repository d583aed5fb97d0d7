// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

// Implements the robust sampling consensus engine for position estimation.

package radioloc

import (
	"math"
	"math/rand"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

//-------------------------------------------------------------------
// EstimatorState
//-------------------------------------------------------------------

// EstimatorState is the lifecycle state of an Estimator.
type EstimatorState int

const (
	StateIdle EstimatorState = iota // Inputs incomplete
	StateReady
	StateRunning
	StateSucceeded
	StateFailed
)

func (s EstimatorState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN!"
	}
}

//-------------------------------------------------------------------
// EstimatorListener
//-------------------------------------------------------------------

// EstimatorListener receives lifecycle notifications. All callbacks run
// synchronously on the caller's goroutine while the estimator is still
// locked, so reentrant mutation attempts fail with ErrLocked.
type EstimatorListener interface {
	OnEstimateStart(e *Estimator)
	OnEstimateEnd(e *Estimator)
	// OnEstimateNextIteration fires whenever an iteration improves the best
	// hypothesis.
	OnEstimateNextIteration(e *Estimator, iteration int)
	// OnEstimateProgress fires when the cumulative iteration fraction crosses
	// the configured progress delta.
	OnEstimateProgress(e *Estimator, progress float64)
}

//-------------------------------------------------------------------
// InliersData
//-------------------------------------------------------------------

// InliersData describes the winning hypothesis consensus.
type InliersData struct {
	Inliers    []bool    // Per reading inlier flags (nil unless kept)
	Residuals  []float64 // Per reading absolute residuals (nil unless kept)
	NumInliers int
	Threshold  float64 // Inlier residual cutoff applied
}

//-------------------------------------------------------------------
// Estimator
//-------------------------------------------------------------------

// Estimator estimates a receiver position from one fingerprint of distance
// readings to known radio sources, tolerating gross outliers through
// repeated minimal-subset consensus. A single instance is not safe for
// concurrent use: while Estimate runs, the instance is exclusively locked
// and every mutator fails fast with ErrLocked.
type Estimator struct {
	method Method
	dims   int

	sources         []*RadioSource
	fingerprint     *Fingerprint
	listener        EstimatorListener
	initialPosition Position

	preliminarySubsetSize int // 0 selects the solver minimum
	threshold             float64
	stopThreshold         float64
	confidence            float64
	maxIterations         int
	progressDelta         float64

	resultRefined                     bool
	covarianceKept                    bool
	linearSolverUsed                  bool
	homogeneousLinearSolverUsed       bool
	preliminarySolutionRefined        bool
	radioSourcePositionCovarianceUsed bool
	evenlyDistributeReadings          bool
	fallbackDistanceStandardDeviation float64
	computeAndKeepInliers             bool
	computeAndKeepResiduals           bool

	sourceQualityScores  []float64
	readingQualityScores []float64

	rnd *rand.Rand

	state EstimatorState

	// Flattened solving arrays in fingerprint reading order
	positions  []Position
	distances  []float64
	stddevs    []float64
	covs       []*mat.SymDense
	sourceIdxs []int

	estimatedPosition Position
	covariance        *mat.SymDense
	inliersData       *InliersData
	iterations        int
}

func newEstimator(method Method, dims int) (*Estimator, error) {
	if dims != 2 && dims != 3 {
		return nil, preconditionf("dimensions", "must be 2 or 3, got %d", dims)
	}
	return &Estimator{
		method:                            method,
		dims:                              dims,
		threshold:                         DefaultThreshold,
		stopThreshold:                     DefaultStopThreshold,
		confidence:                        DefaultConfidence,
		maxIterations:                     DefaultMaxIterations,
		progressDelta:                     DefaultProgressDelta,
		resultRefined:                     true,
		covarianceKept:                    true,
		linearSolverUsed:                  true,
		computeAndKeepInliers:             true,
		computeAndKeepResiduals:           true,
		fallbackDistanceStandardDeviation: DefaultFallbackDistanceStandardDeviation,
		rnd:                               rand.New(rand.NewSource(time.Now().UnixNano())),
		state:                             StateIdle,
	}, nil
}

//-------------------------------------------------------------------
// Read-only surface
//-------------------------------------------------------------------

func (e *Estimator) Method() Method                  { return e.method }
func (e *Estimator) NumberOfDimensions() int         { return e.dims }
func (e *Estimator) State() EstimatorState           { return e.state }
func (e *Estimator) IsLocked() bool                  { return e.state == StateRunning }
func (e *Estimator) IsReady() bool                   { return e.isReady() }
func (e *Estimator) EstimatedPosition() Position     { return e.estimatedPosition }
func (e *Estimator) Covariance() *mat.SymDense       { return e.covariance }
func (e *Estimator) Inliers() *InliersData           { return e.inliersData }
func (e *Estimator) Iterations() int                 { return e.iterations }
func (e *Estimator) Sources() []*RadioSource         { return e.sources }
func (e *Estimator) Fingerprint() *Fingerprint       { return e.fingerprint }
func (e *Estimator) InitialPosition() Position       { return e.initialPosition }
func (e *Estimator) Threshold() float64              { return e.threshold }
func (e *Estimator) StopThreshold() float64          { return e.stopThreshold }
func (e *Estimator) Confidence() float64             { return e.confidence }
func (e *Estimator) MaxIterations() int              { return e.maxIterations }
func (e *Estimator) ProgressDelta() float64          { return e.progressDelta }
func (e *Estimator) IsResultRefined() bool           { return e.resultRefined }
func (e *Estimator) IsCovarianceKept() bool          { return e.covarianceKept }
func (e *Estimator) IsLinearSolverUsed() bool        { return e.linearSolverUsed }
func (e *Estimator) IsHomogeneousLinearSolverUsed() bool {
	return e.homogeneousLinearSolverUsed
}
func (e *Estimator) IsPreliminarySolutionRefined() bool {
	return e.preliminarySolutionRefined
}
func (e *Estimator) IsRadioSourcePositionCovarianceUsed() bool {
	return e.radioSourcePositionCovarianceUsed
}
func (e *Estimator) IsEvenlyDistributeReadings() bool { return e.evenlyDistributeReadings }
func (e *Estimator) FallbackDistanceStandardDeviation() float64 {
	return e.fallbackDistanceStandardDeviation
}
func (e *Estimator) SourceQualityScores() []float64 { return e.sourceQualityScores }
func (e *Estimator) FingerprintReadingsQualityScores() []float64 {
	return e.readingQualityScores
}

// Positions returns the flattened source positions built from
// sources+fingerprint, index aligned with the fingerprint reading order.
func (e *Estimator) Positions() []Position { return e.positions }

// Distances returns the flattened distances, index aligned with Positions.
func (e *Estimator) Distances() []float64 { return e.distances }

// DistanceStandardDeviations returns the flattened standard deviations,
// index aligned with Positions.
func (e *Estimator) DistanceStandardDeviations() []float64 { return e.stddevs }

// MinRequiredSources returns the minimum number of distinct sources (and
// readings) for the current dimensionality and solver flags.
func (e *Estimator) MinRequiredSources() int {
	return MinRequiredReadings(e.dims, e.linearSolverUsed && e.homogeneousLinearSolverUsed)
}

// PreliminarySubsetSize returns the effective subset size: the configured
// value, floored at the solver minimum.
func (e *Estimator) PreliminarySubsetSize() int {
	if min := e.MinRequiredSources(); e.preliminarySubsetSize < min {
		return min
	}
	return e.preliminarySubsetSize
}

//-------------------------------------------------------------------
// Mutators (all rejected with ErrLocked while running)
//-------------------------------------------------------------------

func (e *Estimator) checkUnlocked() error {
	if e.state == StateRunning {
		return ErrLocked
	}
	return nil
}

// SetSources configures the known radio source list.
func (e *Estimator) SetSources(sources []*RadioSource) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if sources == nil {
		return preconditionf("sources", "must not be nil")
	}
	if len(sources) < e.MinRequiredSources() {
		return preconditionf("sources", "need at least %d sources, got %d",
			e.MinRequiredSources(), len(sources))
	}
	for i, s := range sources {
		if s == nil || s.Position.Dims() != e.dims {
			return preconditionf("sources", "source %d does not have %d dimensions", i, e.dims)
		}
	}
	if e.sourceQualityScores != nil && len(e.sourceQualityScores) != len(sources) {
		return preconditionf("sources", "length %d does not match %d quality scores",
			len(sources), len(e.sourceQualityScores))
	}
	e.sources = sources
	e.rebuild()
	return nil
}

// SetFingerprint configures the reading collection to estimate from.
func (e *Estimator) SetFingerprint(fp *Fingerprint) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if fp == nil {
		return preconditionf("fingerprint", "must not be nil")
	}
	if fp.Len() < e.MinRequiredSources() {
		return preconditionf("fingerprint", "need at least %d readings, got %d",
			e.MinRequiredSources(), fp.Len())
	}
	if e.preliminarySubsetSize > fp.Len() {
		return preconditionf("fingerprint", "reading count %d is below the configured %d subset size",
			fp.Len(), e.preliminarySubsetSize)
	}
	for i, r := range fp.Readings {
		if r.Source == nil || r.Source.Position.Dims() != e.dims {
			return preconditionf("fingerprint", "reading %d source does not have %d dimensions", i, e.dims)
		}
	}
	if e.readingQualityScores != nil && len(e.readingQualityScores) != fp.Len() {
		return preconditionf("fingerprint", "reading count %d does not match %d quality scores",
			fp.Len(), len(e.readingQualityScores))
	}
	e.fingerprint = fp
	e.rebuild()
	return nil
}

// SetListener registers the lifecycle listener (nil removes it).
func (e *Estimator) SetListener(l EstimatorListener) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.listener = l
	return nil
}

// SetInitialPosition seeds the nonlinear solver (nil falls back to the
// linear solution or the source centroid).
func (e *Estimator) SetInitialPosition(p Position) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if p != nil && p.Dims() != e.dims {
		return preconditionf("initialPosition", "has %d dimensions, want %d", p.Dims(), e.dims)
	}
	e.initialPosition = p
	return nil
}

// SetPreliminarySubsetSize configures how many readings form one candidate
// hypothesis. Changing it rebuilds the sampling structures.
func (e *Estimator) SetPreliminarySubsetSize(k int) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if min := e.MinRequiredSources(); k < min {
		return preconditionf("preliminarySubsetSize", "must be >= %d, got %d", min, k)
	}
	if e.fingerprint != nil && k > e.fingerprint.Len() {
		return preconditionf("preliminarySubsetSize", "must be <= %d readings, got %d",
			e.fingerprint.Len(), k)
	}
	e.preliminarySubsetSize = k
	e.rebuild()
	return nil
}

func (e *Estimator) SetThreshold(t float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if t <= 0 {
		return preconditionf("threshold", "must be positive, got %g", t)
	}
	e.threshold = t
	return nil
}

func (e *Estimator) SetStopThreshold(t float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if t <= 0 {
		return preconditionf("stopThreshold", "must be positive, got %g", t)
	}
	e.stopThreshold = t
	return nil
}

func (e *Estimator) SetConfidence(c float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if c <= 0 || c >= 1 {
		return preconditionf("confidence", "must be inside (0,1), got %g", c)
	}
	e.confidence = c
	return nil
}

func (e *Estimator) SetMaxIterations(n int) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if n < 1 {
		return preconditionf("maxIterations", "must be >= 1, got %d", n)
	}
	e.maxIterations = n
	return nil
}

func (e *Estimator) SetProgressDelta(d float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if d < 0 || d > 1 {
		return preconditionf("progressDelta", "must be within [0,1], got %g", d)
	}
	e.progressDelta = d
	return nil
}

func (e *Estimator) SetResultRefined(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.resultRefined = v
	return nil
}

func (e *Estimator) SetCovarianceKept(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.covarianceKept = v
	return nil
}

func (e *Estimator) SetLinearSolverUsed(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.linearSolverUsed = v
	e.rebuild()
	return nil
}

func (e *Estimator) SetHomogeneousLinearSolverUsed(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.homogeneousLinearSolverUsed = v
	e.rebuild()
	return nil
}

func (e *Estimator) SetPreliminarySolutionRefined(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.preliminarySolutionRefined = v
	return nil
}

func (e *Estimator) SetRadioSourcePositionCovarianceUsed(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.radioSourcePositionCovarianceUsed = v
	return nil
}

func (e *Estimator) SetEvenlyDistributeReadings(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.evenlyDistributeReadings = v
	return nil
}

func (e *Estimator) SetFallbackDistanceStandardDeviation(sd float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if sd <= 0 {
		return preconditionf("fallbackDistanceStandardDeviation", "must be positive, got %g", sd)
	}
	e.fallbackDistanceStandardDeviation = sd
	return nil
}

func (e *Estimator) SetComputeAndKeepInliersEnabled(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.computeAndKeepInliers = v
	return nil
}

func (e *Estimator) SetComputeAndKeepResidualsEnabled(v bool) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.computeAndKeepResiduals = v
	return nil
}

// SetSourceQualityScores configures per-source priority weights. Only the
// prioritized methods (PROSAC, PROMedS) consume them; the others accept and
// ignore them.
func (e *Estimator) SetSourceQualityScores(scores []float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if scores != nil && e.sources != nil && len(scores) != len(e.sources) {
		return preconditionf("sourceQualityScores", "length %d does not match %d sources",
			len(scores), len(e.sources))
	}
	e.sourceQualityScores = scores
	return nil
}

// SetFingerprintReadingsQualityScores configures per-reading priority
// weights, with the same semantics as SetSourceQualityScores.
func (e *Estimator) SetFingerprintReadingsQualityScores(scores []float64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	if scores != nil && e.fingerprint != nil && len(scores) != e.fingerprint.Len() {
		return preconditionf("fingerprintReadingsQualityScores", "length %d does not match %d readings",
			len(scores), e.fingerprint.Len())
	}
	e.readingQualityScores = scores
	return nil
}

// SetRandomSeed makes subset sampling deterministic.
func (e *Estimator) SetRandomSeed(seed int64) error {
	if err := e.checkUnlocked(); err != nil {
		return err
	}
	e.rnd = rand.New(rand.NewSource(seed))
	return nil
}

//-------------------------------------------------------------------
// Readiness
//-------------------------------------------------------------------

// rebuild refreshes the flattened solving arrays and the idle/ready state
// after any input mutation.
func (e *Estimator) rebuild() {
	e.positions = nil
	e.distances = nil
	e.stddevs = nil
	e.covs = nil
	e.sourceIdxs = nil

	if e.sources != nil && e.fingerprint != nil {
		bySource := map[*RadioSource]int{}
		for i, s := range e.sources {
			bySource[s] = i
		}
		n := e.fingerprint.Len()
		e.positions = make([]Position, n)
		e.distances = make([]float64, n)
		e.stddevs = make([]float64, n)
		e.covs = make([]*mat.SymDense, n)
		e.sourceIdxs = make([]int, n)
		for i, r := range e.fingerprint.Readings {
			e.positions[i] = r.Source.Position
			e.distances[i] = r.Distance
			e.stddevs[i] = r.StandardDeviation
			e.covs[i] = r.Source.PositionCovariance
			if si, ok := bySource[r.Source]; ok {
				e.sourceIdxs[i] = si
			} else {
				e.sourceIdxs[i] = -1 // reading of an unlisted source
			}
		}
	}

	if e.isReady() {
		e.state = StateReady
	} else {
		e.state = StateIdle
	}
}

func (e *Estimator) isReady() bool {
	if e.state == StateRunning {
		return true // inputs were validated before the run started
	}
	if e.sources == nil || e.fingerprint == nil {
		return false
	}
	min := e.MinRequiredSources()
	if len(e.sources) < min || e.fingerprint.Len() < min {
		return false
	}
	// Cross-field: every subset must be drawable from the readings
	if e.fingerprint.Len() < e.PreliminarySubsetSize() {
		return false
	}
	// Readings must reference at least min distinct sources from the list
	distinct := []int{}
	for _, si := range e.sourceIdxs {
		if si < 0 {
			return false
		}
		if !slices.Contains(distinct, si) {
			distinct = append(distinct, si)
		}
	}
	if len(distinct) < min {
		return false
	}
	if e.method.Prioritized() {
		if e.sourceQualityScores != nil && len(e.sourceQualityScores) != len(e.sources) {
			return false
		}
		if e.readingQualityScores != nil && len(e.readingQualityScores) != e.fingerprint.Len() {
			return false
		}
	}
	return true
}

//-------------------------------------------------------------------
// Estimation
//-------------------------------------------------------------------

// Estimate runs the robust consensus loop and returns the estimated
// position. The instance is exclusively locked for the duration of the call;
// the lock is released on every exit path, including listener panics.
func (e *Estimator) Estimate() (pos Position, err error) {
	if e.state == StateRunning {
		return nil, ErrLocked
	}
	if !e.isReady() {
		return nil, ErrNotReady
	}

	e.state = StateRunning
	e.estimatedPosition = nil
	e.covariance = nil
	e.inliersData = nil
	e.iterations = 0

	defer func() {
		if err == nil && pos != nil {
			e.state = StateSucceeded
		} else {
			e.state = StateFailed
		}
	}()
	defer func() {
		if e.listener != nil {
			e.listener.OnEstimateEnd(e)
		}
	}()
	if e.listener != nil {
		e.listener.OnEstimateStart(e)
	}

	pos, err = e.run()
	return pos, err
}

func (e *Estimator) run() (Position, error) {
	n := len(e.distances)
	k := e.PreliminarySubsetSize()
	qualities := e.combinedQualityScores(n)

	var smp subsetSampler
	var cns consensus
	var prosacSmp *prosacSampler
	var prosacCns *prosacConsensus

	switch e.method {
	case RANSAC, MSAC, LMedS:
		if e.evenlyDistributeReadings {
			smp = newSpreadSampler(e.rnd, e.readingsBySource())
		} else {
			smp = newUniformSampler(e.rnd, n)
		}
		switch e.method {
		case RANSAC:
			cns = &ransacConsensus{threshold: e.threshold}
		case MSAC:
			cns = &msacConsensus{threshold: e.threshold}
		default:
			cns = &lmedsConsensus{subsetSize: k}
		}
	case PROSAC:
		prosacSmp = newProsacSampler(e.rnd, qualities, k, e.maxIterations)
		prosacCns = &prosacConsensus{threshold: e.threshold, sorted: prosacSmp.sorted}
		smp, cns = prosacSmp, prosacCns
	case PROMedS:
		smp = newWeightedSampler(e.rnd, qualities)
		cns = &lmedsConsensus{subsetSize: k}
	}

	subset := make([]int, k)
	res := make([]float64, n)
	bestRes := make([]float64, n)
	subsetPos := make([]Position, k)
	subsetDist := make([]float64, k)
	subsetSd := make([]float64, k)
	subsetCov := make([]*mat.SymDense, k)

	bestScore := math.Inf(1)
	var bestPos Position
	var lastErr error
	budget := e.maxIterations
	lastProgress := 0.0

	iter := 0
	for ; iter < budget; iter++ {
		smp.Sample(iter, subset)
		if prosacCns != nil {
			prosacCns.prefix = prosacSmp.prefixSize(iter)
		}

		p, err := e.solveSubset(subset, subsetPos, subsetDist, subsetSd, subsetCov)
		if err != nil {
			// Unusable subset; consumes budget without progress
			lastErr = err
			PrintD(3, "\titer %d: subset solve failed: %s\n", iter, err.Error())
			continue
		}

		e.residualsAt(p, res)
		score := cns.Score(res)
		if score < bestScore {
			bestScore = score
			bestPos = p
			copy(bestRes, res)

			inl := countInliers(res, cns.Threshold(res))
			// A threshold derived from the hypothesis's own median says
			// nothing about the true inlier ratio: a bad hypothesis inflates
			// its threshold until every reading passes. Only the fixed
			// threshold methods feed the confidence budget.
			if e.method.thresholdBased() {
				ratio := float64(inl) / float64(n)
				if nb := adaptiveIterations(ratio, k, e.confidence); nb < budget {
					if nb <= iter {
						nb = iter + 1
					}
					budget = nb
				}
			}
			PrintD(2, "\titer %d: new best score=%g, inliers=%d/%d, budget=%d\n",
				iter, score, inl, n, budget)
			if e.listener != nil {
				e.listener.OnEstimateNextIteration(e, iter)
			}
			if !e.method.thresholdBased() && bestScore <= e.stopThreshold {
				iter++
				break
			}
		}

		if e.listener != nil && e.progressDelta > 0 {
			pr := clamp(float64(iter+1)/float64(budget), 0, 1)
			if pr-lastProgress >= e.progressDelta {
				lastProgress = pr
				e.listener.OnEstimateProgress(e, pr)
			}
		}
	}
	e.iterations = iter

	if bestPos == nil {
		return nil, &EstimationError{Iterations: iter, cause: lastErr}
	}

	return e.finish(bestPos, bestRes, cns)
}

// solveSubset gathers the subset tuples into the provided scratch buffers
// and produces one candidate position.
func (e *Estimator) solveSubset(subset []int, pos []Position, dist, sd []float64,
	covs []*mat.SymDense) (Position, error) {

	for j, i := range subset {
		pos[j] = e.positions[i]
		dist[j] = e.distances[i]
		sd[j] = e.stddevs[i]
		covs[j] = e.covs[i]
	}

	if e.linearSolverUsed {
		p, err := SolveLinear(pos, dist, e.homogeneousLinearSolverUsed)
		if err != nil {
			return nil, err
		}
		if e.preliminarySolutionRefined {
			if rp, _, err := SolveNonlinear(pos, dist, sd, covs, p, e.nonlinearOptions()); err == nil {
				p = rp
			}
		}
		return p, nil
	}

	seed := e.initialPosition
	if seed == nil {
		// Seed at the linear solution when the subset supports one
		if lp, err := SolveLinear(pos, dist, false); err == nil {
			seed = lp
		}
	}
	p, _, err := SolveNonlinear(pos, dist, sd, covs, seed, e.nonlinearOptions())
	return p, err
}

func (e *Estimator) nonlinearOptions() *NonlinearOptions {
	opt := NewNonlinearOptions()
	opt.FallbackStandardDeviation = e.fallbackDistanceStandardDeviation
	opt.UseSourcePositionCovariance = e.radioSourcePositionCovarianceUsed
	return opt
}

// residualsAt fills res with the absolute distance residual of every reading
// under the hypothesis p.
func (e *Estimator) residualsAt(p Position, res []float64) {
	for i := range e.distances {
		res[i] = math.Abs(e.distances[i] - p.Distance(e.positions[i]))
	}
}

// combinedQualityScores merges source and reading quality scores into one
// weight per reading (1.0 where no score was provided).
func (e *Estimator) combinedQualityScores(n int) []float64 {
	q := make([]float64, n)
	for i := range q {
		q[i] = 1.0
		if e.readingQualityScores != nil {
			q[i] *= e.readingQualityScores[i]
		}
		if e.sourceQualityScores != nil && e.sourceIdxs[i] >= 0 {
			q[i] *= e.sourceQualityScores[e.sourceIdxs[i]]
		}
	}
	return q
}

// readingsBySource groups reading indices per distinct source for the spread
// sampling policy.
func (e *Estimator) readingsBySource() [][]int {
	order := []int{}
	groups := map[int][]int{}
	for i, si := range e.sourceIdxs {
		if _, ok := groups[si]; !ok {
			order = append(order, si)
		}
		groups[si] = append(groups[si], i)
	}
	out := make([][]int, 0, len(order))
	for _, si := range order {
		out = append(out, groups[si])
	}
	return out
}

func countInliers(res []float64, threshold float64) int {
	n := 0
	for _, r := range res {
		if r <= threshold {
			n++
		}
	}
	return n
}

// adaptiveIterations returns the number of iterations needed to draw at
// least one outlier-free subset of size k with the requested confidence,
// given the observed inlier ratio.
func adaptiveIterations(ratio float64, k int, confidence float64) int {
	pAllInliers := math.Pow(clamp(ratio, 0, 1), float64(k))
	if pAllInliers <= 0 {
		return math.MaxInt
	}
	if pAllInliers >= 1 {
		return 1
	}
	it := math.Ceil(math.Log(1.0-confidence) / math.Log(1.0-pAllInliers))
	if it < 1 {
		return 1
	}
	if it > math.MaxInt32 {
		return math.MaxInt
	}
	return int(it)
}
