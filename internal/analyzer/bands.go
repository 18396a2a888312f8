package analyzer

import "math"

// Band edges in Hz. Bass covers the kick and bass-guitar fundamentals, mid
// the vocal and melodic range, high everything above up to Nyquist.
const (
	bassLowHz  = 20.0
	bassHighHz = 250.0
	midHighHz  = 4000.0
)

// Bands holds normalized per-range energies plus the full-spectrum mean.
// All values are in [0,1].
type Bands struct {
	Bass    float64
	Mid     float64
	High    float64
	Overall float64
}

// ExtractBands reduces a snapshot to named band energies. Each band is the
// mean bin magnitude over its frequency range divided by the snapshot's
// FullScale; Overall is the same mean taken over every bin. The result is a
// pure function of the snapshot, and an invalid snapshot yields zero bands.
func ExtractBands(snap Snapshot) Bands {
	if !snap.Valid() {
		return Bands{}
	}

	nyquist := snap.SampleRate / 2
	resolution := nyquist / float64(len(snap.Magnitudes))

	b := Bands{
		Bass: bandMean(snap, resolution, bassLowHz, bassHighHz),
		Mid:  bandMean(snap, resolution, bassHighHz, midHighHz),
		High: bandMean(snap, resolution, midHighHz, nyquist),
	}

	sum := 0.0
	for _, m := range snap.Magnitudes {
		sum += m
	}
	b.Overall = clamp01(sum / float64(len(snap.Magnitudes)) / snap.FullScale)
	return b
}

func bandMean(snap Snapshot, resolution, minHz, maxHz float64) float64 {
	if minHz >= maxHz || resolution <= 0 {
		return 0
	}
	lo := int(math.Floor(minHz / resolution))
	hi := int(math.Ceil(maxHz/resolution)) + 1
	if hi > len(snap.Magnitudes) {
		hi = len(snap.Magnitudes)
	}
	if lo >= hi {
		return 0
	}
	sum := 0.0
	for _, m := range snap.Magnitudes[lo:hi] {
		sum += m
	}
	return clamp01(sum / float64(hi-lo) / snap.FullScale)
}
