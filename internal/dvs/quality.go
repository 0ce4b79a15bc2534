package dvs

import "math"

// ringSize is the quality averaging window, in ticks.
const ringSize = 32

// qualityRing is a fixed-capacity ring of per-tick quality scores. The
// oldest entry is overwritten on overflow; the average covers only filled
// entries.
type qualityRing struct {
	scores [ringSize]int
	index  int
	filled int
}

func (r *qualityRing) push(score int) {
	r.scores[r.index] = score
	r.index = (r.index + 1) % ringSize
	if r.filled < ringSize {
		r.filled++
	}
}

func (r *qualityRing) len() int { return r.filled }

func (r *qualityRing) average() float64 {
	if r.filled == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < r.filled; i++ {
		sum += r.scores[i]
	}
	return float64(sum) / float64(r.filled)
}

func (r *qualityRing) reset() {
	*r = qualityRing{}
}

// QualityThresholds bounds the pitch-stability classification. The historic
// values are 3 and 6; their tolerance intent is undocumented, so they are
// settable rather than baked in.
type QualityThresholds struct {
	Low  float64
	High float64
}

// DefaultThresholds returns the historic stability thresholds.
func DefaultThresholds() QualityThresholds {
	return QualityThresholds{Low: 3.0, High: 6.0}
}

// positionQuality scores one tick's position sample against the previous
// one. No lock and no prior sample both score zero; a position that barely
// moved suggests a stuck signal.
func positionQuality(lastMS, currentMS int) int {
	switch {
	case currentMS < 0:
		return 0
	case lastMS < 0:
		return 0
	case abs(currentMS-lastMS) >= 5:
		return 100
	default:
		return 50
	}
}

// pitchQuality scores pitch stability as |pitch / delta|. An unchanged pitch
// (or no prior sample) contributes nothing; the delta is only guarded
// against exact zero, so a near-zero delta yields a huge, saturating ratio.
func pitchQuality(havePrior bool, lastPitch, pitch float64, th QualityThresholds) int {
	if !havePrior {
		return 0
	}
	delta := pitch - lastPitch
	if delta == 0 {
		return 0
	}
	stability := math.Abs(pitch / delta)
	switch {
	case stability < th.Low:
		return 0
	case stability > th.High:
		return 100
	default:
		return 75
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
