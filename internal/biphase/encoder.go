package biphase

import "github.com/karanvir/timewax/internal/ltc"

// Output levels in the codec's native 0..254 range, symmetric around 127.
const (
	levelLow  = 38
	levelHigh = 218
)

// Encoder modulates SMPTE timecode frames as biphase-mark audio, one byte of
// the 80-bit frame at a time. It implements ltc.Encoder.
type Encoder struct {
	sampleRate int
	standard   ltc.RateStandard

	hours, mins, secs, frame int

	packed   [10]byte
	level    byte
	phaseAcc float64 // fractional sample carry between half-bits
	out      []byte  // reused emission buffer
}

var _ ltc.Encoder = (*Encoder)(nil)

// NewEncoder creates an encoder bound to a sample rate and rate standard.
// Its signature matches ltc.EncoderFactory.
func NewEncoder(sampleRate int, standard ltc.RateStandard) ltc.Encoder {
	e := &Encoder{level: levelLow}
	e.Reinit(sampleRate, standard)
	return e
}

// Reinit rebinds the encoder in place. The timecode counter is left alone;
// callers position it with SetTimecode.
func (e *Encoder) Reinit(sampleRate int, standard ltc.RateStandard) {
	e.sampleRate = sampleRate
	e.standard = standard
	e.phaseAcc = 0
	if e.out == nil {
		e.out = make([]byte, 0, e.BufferSize())
	}
}

// SetTimecode positions the internal counter.
func (e *Encoder) SetTimecode(hours, mins, secs, frame int) {
	e.hours, e.mins, e.secs, e.frame = hours, mins, secs, frame
}

// IncTimecode advances by one video frame, skipping dropped frame numbers
// for 29.97 drop-frame (frames 0 and 1 of each minute not divisible by 10).
func (e *Encoder) IncTimecode() {
	e.frame++
	if e.frame < e.standard.FramesPerSecond() {
		return
	}
	e.frame = 0
	if e.secs++; e.secs == 60 {
		e.secs = 0
		if e.mins++; e.mins == 60 {
			e.mins = 0
			if e.hours++; e.hours == 24 {
				e.hours = 0
			}
		}
		if e.standard == ltc.Rate2997 && e.mins%10 != 0 {
			e.frame = 2
		}
	}
}

// samplesPerBit is the nominal duration of one biphase bit: 80 bits per
// video frame.
func (e *Encoder) samplesPerBit() float64 {
	return float64(e.sampleRate) / (e.standard.FPS() * frameBits)
}

// BufferSize returns the most samples one EncodeByte call can emit at
// nominal speed.
func (e *Encoder) BufferSize() int {
	return int(8*e.samplesPerBit()) + 2
}

// EncodeByte modulates byte index 0-9 of the current frame. Requesting byte
// 0 snapshots the counter into the packed frame. Biphase-mark: the level
// flips at every bit boundary, and again mid-bit for a one.
func (e *Encoder) EncodeByte(index int, speed float64) []byte {
	if index == 0 {
		e.packed = packFrame(e.hours, e.mins, e.secs, e.frame, e.standard == ltc.Rate2997)
	}
	if index < 0 || index >= len(e.packed) {
		return nil
	}
	if speed <= 0 {
		speed = 1.0
	}
	half := e.samplesPerBit() * speed / 2

	e.out = e.out[:0]
	b := e.packed[index]
	for i := 0; i < 8; i++ {
		e.toggle()
		if b>>i&1 == 1 {
			e.emit(half)
			e.toggle()
			e.emit(half)
		} else {
			e.emit(2 * half)
		}
	}
	return e.out
}

func (e *Encoder) toggle() {
	if e.level == levelLow {
		e.level = levelHigh
	} else {
		e.level = levelLow
	}
}

// emit appends duration samples of the current level, carrying the
// fractional remainder so bit timing stays exact over a frame.
func (e *Encoder) emit(duration float64) {
	e.phaseAcc += duration
	n := int(e.phaseAcc)
	e.phaseAcc -= float64(n)
	for i := 0; i < n; i++ {
		e.out = append(e.out, e.level)
	}
}
