// Copyright (c) 2026 radioloc authors. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the authors.
// The authors accept no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.8.26
//

package radioloc

import (
	"math"
)

//-------------------------------------------------------------------
// Reading
//-------------------------------------------------------------------

// Reading is one distance observation of a RadioSource. Distance is in
// meters; StandardDeviation is the 1-sigma uncertainty of the distance, or 0
// when unknown (the estimator then applies its fallback standard deviation).
// Multiple readings of the same source are allowed.
type Reading struct {
	Source            *RadioSource
	Distance          float64
	StandardDeviation float64
}

func NewReading(src *RadioSource, distance, stddev float64) Reading {
	return Reading{
		Source:            src,
		Distance:          distance,
		StandardDeviation: stddev,
	}
}

//-------------------------------------------------------------------
// Fingerprint
//-------------------------------------------------------------------

// Fingerprint is the ordered collection of readings taken for one
// estimation call.
type Fingerprint struct {
	Readings []Reading
}

func NewFingerprint(readings ...Reading) *Fingerprint {
	return &Fingerprint{Readings: readings}
}

// Add appends a reading preserving order.
func (f *Fingerprint) Add(r Reading) {
	f.Readings = append(f.Readings, r)
}

// Len returns the number of readings.
func (f *Fingerprint) Len() int {
	return len(f.Readings)
}

// DistinctSources returns the number of distinct source identities among the
// readings.
func (f *Fingerprint) DistinctSources() int {
	seen := map[*RadioSource]struct{}{}
	for _, r := range f.Readings {
		seen[r.Source] = struct{}{}
	}
	return len(seen)
}

//-------------------------------------------------------------------
// Path loss model (RSSI to distance)
//-------------------------------------------------------------------

// PathLossModel converts received signal strength to a distance estimate
// using the log-distance path loss model:
//
//	RSSI = TxPower - 10 n log10(d/d0) + X
//
// where n is the path loss exponent and X is log-normal shadowing. The
// conversion lives outside the consensus engine; it only manufactures
// Readings.
type PathLossModel struct {
	TxPower           float64 // Received power at the reference distance [dBm]
	Exponent          float64 // Path loss exponent n (2.0 in free space)
	ReferenceDistance float64 // Reference distance d0 [m]
	ShadowingStdDev   float64 // Shadowing standard deviation [dB]
}

// NewPathLossModel creates a model with free space defaults.
func NewPathLossModel() *PathLossModel {
	return &PathLossModel{
		TxPower:           -40.0,
		Exponent:          2.0,
		ReferenceDistance: 1.0,
		ShadowingStdDev:   4.0,
	}
}

// DistanceFromRSSI inverts the path loss model, returning the distance
// estimate and its standard deviation. The uncertainty grows linearly with
// the estimated distance because shadowing is log-normal in distance.
func (m *PathLossModel) DistanceFromRSSI(rssi float64) (distance, stddev float64) {
	distance = m.ReferenceDistance * math.Pow(10.0, (m.TxPower-rssi)/(10.0*m.Exponent))
	// d sigma/d RSSI = d ln(10)/(10 n), scaled by the shadowing deviation
	stddev = distance * math.Ln10 / (10.0 * m.Exponent) * m.ShadowingStdDev
	return distance, stddev
}

// ReadingFromRSSI builds a distance reading of src from a raw signal
// strength observation.
func (m *PathLossModel) ReadingFromRSSI(src *RadioSource, rssi float64) Reading {
	d, sd := m.DistanceFromRSSI(rssi)
	return NewReading(src, d, sd)
}
