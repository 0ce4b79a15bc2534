package biphase

import (
	"math"

	"github.com/karanvir/timewax/internal/ltc"
)

// comparatorHysteresis keeps low-level noise from registering as edges.
const comparatorHysteresis = 0.1

// Decoder demodulates biphase-mark LTC from mono audio. Edge spacing is
// classified against an adaptive bit-period estimate, bits shift through a
// sync-word matcher, and completed frames queue up for the engine to drain.
// It implements ltc.Decoder.
//
// Reverse playback inverts the transmitted bit order; this demodulator does
// not track it and always reports Reverse=false.
type Decoder struct {
	queueDepth int
	queue      []ltc.Frame

	nominalBitPeriod float64
	bitPeriod        float64 // adaptive samples-per-bit estimate
	high             bool
	sinceEdge        int
	halfPending      bool

	sync   uint16
	data   uint64
	pushed int

	peak float64
}

var _ ltc.Decoder = (*Decoder)(nil)

// NewDecoder creates a decoder. samplesPerFrame seeds the bit-period
// estimate; queueDepth bounds the decoded-frame queue, dropping the oldest
// on overflow. Its signature matches ltc.DecoderFactory.
func NewDecoder(samplesPerFrame, queueDepth int) ltc.Decoder {
	if queueDepth < 1 {
		queueDepth = 1
	}
	period := float64(samplesPerFrame) / frameBits
	if period < 1 {
		period = 1
	}
	return &Decoder{
		queueDepth:       queueDepth,
		queue:            make([]ltc.Frame, 0, queueDepth),
		nominalBitPeriod: period,
		bitPeriod:        period,
	}
}

// Write feeds mono samples. The position argument exists for codecs that
// timestamp frames; the soft demodulator only needs the waveform.
func (d *Decoder) Write(samples []float64, position int64) {
	d.peak *= 0.5
	for _, v := range samples {
		if a := math.Abs(v); a > d.peak {
			d.peak = a
		}
		d.sinceEdge++
		switch {
		case !d.high && v > comparatorHysteresis:
			d.high = true
			d.onEdge()
		case d.high && v < -comparatorHysteresis:
			d.high = false
			d.onEdge()
		}
	}
}

// Read pops the oldest queued frame.
func (d *Decoder) Read() (ltc.Frame, bool) {
	if len(d.queue) == 0 {
		return ltc.Frame{}, false
	}
	f := d.queue[0]
	d.queue = d.queue[1:]
	return f, true
}

// Reset discards queued frames and demodulator state.
func (d *Decoder) Reset() {
	d.queue = d.queue[:0]
	d.bitPeriod = d.nominalBitPeriod
	d.high = false
	d.sinceEdge = 0
	d.halfPending = false
	d.sync = 0
	d.data = 0
	d.pushed = 0
	d.peak = 0
}

// onEdge classifies the interval since the previous edge. A full bit period
// is a zero; two half periods make a one; anything far longer than a bit is
// dropout, which forces a resync.
func (d *Decoder) onEdge() {
	interval := float64(d.sinceEdge)
	d.sinceEdge = 0
	switch {
	case interval > 3*d.bitPeriod:
		d.halfPending = false
		d.pushed = 0
	case interval > 0.75*d.bitPeriod:
		d.halfPending = false
		d.adapt(interval)
		d.pushBit(0)
	case d.halfPending:
		d.halfPending = false
		d.adapt(2 * interval)
		d.pushBit(1)
	default:
		d.halfPending = true
	}
}

func (d *Decoder) adapt(measured float64) {
	d.bitPeriod += (measured - d.bitPeriod) * 0.1
}

// pushBit shifts a bit through the sync matcher. Bits leaving the 16-bit
// sync register fall into the 64-bit data register, so when the sync word
// matches, the data register holds exactly the frame's data bits.
func (d *Decoder) pushBit(b uint16) {
	out := d.sync >> 15 & 1
	d.sync = d.sync<<1 | b
	d.data = d.data<<1 | uint64(out)
	d.pushed++
	if d.pushed < frameBits || d.sync != syncWord {
		return
	}
	d.pushed = 0

	f := unpackData(d.data)
	f.Volume = dbfs(d.peak)
	if len(d.queue) == d.queueDepth {
		copy(d.queue, d.queue[1:])
		d.queue = d.queue[:d.queueDepth-1]
	}
	d.queue = append(d.queue, f)
}

func dbfs(peak float64) float64 {
	if peak <= 0 {
		return -96.0
	}
	db := 20 * math.Log10(peak)
	if db < -96 {
		db = -96
	}
	return db
}
