// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	m "github.com/radioloc/radioloc"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		flag.Usage()
		os.Exit(1)
	}

	// Run the main application
	if err := runApplication(args); err != nil {
		m.PrintE(err)
		os.Exit(1)
	}
}

// Main application processing
func runApplication(args cmdOpt) error {

	rnd := rand.New(rand.NewSource(args.seed))

	// Synthesize a scenario: a true position surrounded by radio sources
	truePos, sources, fp := synthesizeScenario(args, rnd)

	if m.DBG_ >= 1 {
		m.PrintA("--- scenario ---\n")
		m.PrintA("true position: %s\n", truePos)
		for _, s := range sources {
			m.PrintA("source: %s\n", s)
		}
	}

	// Configure the estimator
	est, err := m.NewEstimatorForMethod(args.method, args.dims)
	if err != nil {
		return fmt.Errorf("failed to create estimator: %w", err)
	}
	if err := configureEstimator(est, args, sources, fp); err != nil {
		return fmt.Errorf("failed to configure estimator: %w", err)
	}

	// Estimate and report
	pos, err := est.Estimate()
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}
	return printResult(est, truePos, pos)
}

// Synthesize sources and a fingerprint with noise and gross outliers
func synthesizeScenario(args cmdOpt, rnd *rand.Rand) (m.Position, []*m.RadioSource, *m.Fingerprint) {

	truePos := make(m.Position, args.dims)
	for j := range truePos {
		truePos[j] = args.area * (rnd.Float64() - 0.5)
	}

	sources := make([]*m.RadioSource, args.numSources)
	for i := range sources {
		p := make(m.Position, args.dims)
		for j := range p {
			p[j] = args.area * (rnd.Float64() - 0.5)
		}
		sources[i] = m.NewRadioSource(p)
	}

	fp := m.NewFingerprint()
	for _, s := range sources {
		d := truePos.Distance(s.Position) + rnd.NormFloat64()*args.noise
		if rnd.Float64() < args.outliers {
			d += args.area * rnd.Float64() // gross NLOS error
		}
		if d < 0 {
			d = 0
		}
		fp.Add(m.NewReading(s, d, args.noise))
	}
	return truePos, sources, fp
}

// Configure the estimator from command options
func configureEstimator(est *m.Estimator, args cmdOpt, sources []*m.RadioSource, fp *m.Fingerprint) error {

	if err := est.SetRandomSeed(args.seed); err != nil {
		return err
	}
	if err := est.SetSources(sources); err != nil {
		return err
	}
	if err := est.SetFingerprint(fp); err != nil {
		return err
	}
	if err := est.SetThreshold(args.threshold); err != nil {
		return err
	}
	if err := est.SetConfidence(args.confidence); err != nil {
		return err
	}
	if err := est.SetMaxIterations(args.maxIter); err != nil {
		return err
	}
	if args.method.Prioritized() {
		// Quality scores favor shorter distances (stronger signals)
		scores := make([]float64, fp.Len())
		for i, r := range fp.Readings {
			scores[i] = 1.0 / (1.0 + r.Distance)
		}
		if err := est.SetFingerprintReadingsQualityScores(scores); err != nil {
			return err
		}
	}
	return nil
}

// Output results
func printResult(est *m.Estimator, truePos, pos m.Position) error {

	fmt.Printf("method:    %s\n", est.Method())
	fmt.Printf("estimated: %s\n", pos)
	fmt.Printf("true:      %s\n", truePos)
	fmt.Printf("error:     %.4f m\n", pos.Distance(truePos))
	fmt.Printf("iterations: %d\n", est.Iterations())
	if in := est.Inliers(); in != nil {
		fmt.Printf("inliers:   %d / %d (threshold %.4f)\n",
			in.NumInliers, len(est.Distances()), in.Threshold)
	}
	if cov := est.Covariance(); cov != nil {
		if m.DBG_ >= 1 {
			m.PrintA("covariance=\n")
			m.PrintMat(cov)
		}
		r, err := m.ConfidenceRadius(cov, est.Confidence())
		if err != nil {
			return err
		}
		fmt.Printf("accuracy:  %.4f m (%.0f%% confidence)\n", r, est.Confidence()*100)
	}
	return nil
}

// Command options
type cmdOpt struct {
	method     m.Method
	dims       int
	numSources int
	area       float64
	noise      float64
	outliers   float64
	threshold  float64
	confidence float64
	maxIter    int
	seed       int64
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Estimates a synthetic receiver position from noisy distance readings.\n")
		flag.PrintDefaults()
	}

	flag.Var(&a.method, "m", "Robust method. RANSAC, LMedS, MSAC, PROSAC or PROMedS.")
	flag.IntVar(&a.dims, "d", 2, "Number of dimensions (2 or 3).")
	flag.IntVar(&a.numSources, "n", 10, "Number of radio sources.")
	flag.Float64Var(&a.area, "a", 100.0, "Scenario area side length [m].")
	flag.Float64Var(&a.noise, "noise", 0.1, "Distance noise standard deviation [m].")
	flag.Float64Var(&a.outliers, "outliers", 0.2, "Fraction of gross NLOS outliers.")
	flag.Float64Var(&a.threshold, "t", m.DefaultThreshold, "Inlier residual threshold [m].")
	flag.Float64Var(&a.confidence, "c", m.DefaultConfidence, "Confidence of the adaptive iteration budget.")
	flag.IntVar(&a.maxIter, "i", m.DefaultMaxIterations, "Maximum consensus iterations.")
	flag.Int64Var(&a.seed, "seed", 1, "Random seed for scenario and sampling.")
	flag.IntVar(&m.DBG_, "v", 0, "Debug display level.")
	flag.Parse()

	if a.dims != 2 && a.dims != 3 {
		return a, fmt.Errorf("invalid dimensions: %d", a.dims)
	}
	if a.numSources < a.dims+1 {
		return a, fmt.Errorf("not enough sources: %d", a.numSources)
	}
	return a, nil
}
