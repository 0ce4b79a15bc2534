package dvs

// nominalCarrierHz is the control-signal carrier at 33 RPM for the supported
// pressings.
const nominalCarrierHz = 1000.0

// CarrierCorrelator estimates pitch from the control carrier's zero-crossing
// rate. It never acquires a position lock (Position is always -1): full
// timecode correlation belongs to an external correlator, and this stand-in
// only keeps the pitch and quality paths live when none is wired in.
type CarrierCorrelator struct {
	sampleRate float64
	carrierHz  float64
	smoothing  float64

	lastSample float64
	pitch      float64
}

var _ Correlator = (*CarrierCorrelator)(nil)

// NewCarrierCorrelator builds a pitch-only correlator. Its signature matches
// CorrelatorFactory.
func NewCarrierCorrelator(desc Descriptor, rpm RPM, filter PitchFilter, sampleRate int) (Correlator, error) {
	smoothing := 0.25 // modern filter settles faster
	if filter == FilterLegacy {
		smoothing = 0.1
	}
	return &CarrierCorrelator{
		sampleRate: float64(sampleRate),
		carrierHz:  nominalCarrierHz * rpm.SpeedMultiplier(),
		smoothing:  smoothing,
	}, nil
}

// Submit counts rising zero crossings on the left channel and smooths the
// implied carrier frequency into a pitch ratio.
func (c *CarrierCorrelator) Submit(pcm []int16, frames int) {
	if frames <= 0 || len(pcm) < frames*2 {
		return
	}
	crossings := 0
	prev := c.lastSample
	for i := 0; i < frames; i++ {
		v := float64(pcm[i*2])
		if prev <= 0 && v > 0 {
			crossings++
		}
		prev = v
	}
	c.lastSample = prev

	freq := float64(crossings) * c.sampleRate / float64(frames)
	instant := freq / c.carrierHz
	c.pitch += (instant - c.pitch) * c.smoothing
}

// Pitch returns the smoothed speed ratio.
func (c *CarrierCorrelator) Pitch() float64 { return c.pitch }

// Position reports no lock.
func (c *CarrierCorrelator) Position() int { return -1 }
