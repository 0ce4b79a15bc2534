package ltc

import "github.com/karanvir/timewax/internal/audio"

// NominalTempo is the host tempo at which encoder bits run at their nominal
// duration.
const NominalTempo = 120.0

// frameBytes is the size of one LTC frame as the encoder emits it.
const frameBytes = 10

// EncodeConfig holds the encode engine's host-settable parameters.
type EncodeConfig struct {
	OffsetSeconds int          // initial timecode, as seconds of day
	Rate          RateStandard // RateAuto is treated as 30
}

// EncodeEngine drives an LTC encoder byte by byte and emits one audio sample
// per output frame. Variable-length bit encoding is amortized across ticks
// through an elastic backpressure buffer. Transport jumps and live rate
// changes are not handled; the timecode counter only moves forward.
type EncodeEngine struct {
	cfg     EncodeConfig
	factory EncoderFactory

	enc        Encoder
	sampleRate int
	byteIndex  int // 0-9 within the current frame
	backlog    sampleFIFO
	frameCount int64 // video frames completed since prepare
}

// NewEncodeEngine creates an unprepared encode engine.
func NewEncodeEngine(cfg EncodeConfig, factory EncoderFactory) *EncodeEngine {
	if cfg.Rate == RateAuto {
		cfg.Rate = Rate30
	}
	return &EncodeEngine{cfg: cfg, factory: factory}
}

// Prepare binds the engine to a sample rate, building the encoder and sizing
// the backpressure buffer to absorb one tick's worth of bit-expanded output.
func (e *EncodeEngine) Prepare(sampleRate int) {
	e.sampleRate = sampleRate
	if sampleRate <= 1 {
		e.enc = nil
		return
	}
	if e.enc == nil {
		e.enc = e.factory(sampleRate, e.cfg.Rate)
	} else {
		e.enc.Reinit(sampleRate, e.cfg.Rate)
	}
	e.byteIndex = 0
	e.frameCount = 0
	e.backlog.reset(e.enc.BufferSize() * 16)
	e.applyOffset()
}

// SetOffset restarts generation from a new offset. The running encoder is
// reinitialized in place.
func (e *EncodeEngine) SetOffset(seconds int) {
	e.cfg.OffsetSeconds = seconds
	e.reconfigure()
}

// SetRate rebinds the encoder to a new rate standard in place.
func (e *EncodeEngine) SetRate(r RateStandard) {
	if r == RateAuto {
		r = Rate30
	}
	e.cfg.Rate = r
	e.reconfigure()
}

// Config returns the current parameters.
func (e *EncodeEngine) Config() EncodeConfig { return e.cfg }

// FrameCount returns the number of completed video frames since prepare.
func (e *EncodeEngine) FrameCount() int64 { return e.frameCount }

func (e *EncodeEngine) reconfigure() {
	if e.enc == nil {
		return
	}
	e.enc.Reinit(e.sampleRate, e.cfg.Rate)
	e.byteIndex = 0
	e.backlog.reset(e.enc.BufferSize() * 16)
	e.applyOffset()
}

// applyOffset decomposes the configured offset into an initial SMPTE time.
// Whole days fall away; only the seconds-of-day component matters.
func (e *EncodeEngine) applyOffset() {
	offset := int64(e.cfg.OffsetSeconds)
	offset %= 86400
	if offset < 0 {
		offset += 86400
	}
	hours := offset / 3600
	offset -= hours * 3600
	mins := offset / 60
	secs := offset - mins*60
	e.enc.SetTimecode(int(hours), int(mins), int(secs), 0)
}

// Process fills out with one tick of LTC audio. Bit-samples arrive from the
// encoder in its native 0..254 range and are mapped to [-1, 1).
func (e *EncodeEngine) Process(tick audio.Tick, out []float64) {
	if e.enc == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}
	frames := tick.Frames
	if frames > len(out) {
		frames = len(out)
	}
	speed := 1.0
	if tick.Tempo > 0 {
		speed = NominalTempo / tick.Tempo
	}
	for i := 0; i < frames; i++ {
		for e.backlog.empty() {
			e.backlog.push(e.enc.EncodeByte(e.byteIndex, speed))
			if e.byteIndex++; e.byteIndex == frameBytes {
				e.enc.IncTimecode()
				e.frameCount++
				e.byteIndex = 0
			}
		}
		out[i] = float64(e.backlog.pop())/127.0 - 1.0
	}
}

// sampleFIFO is the elastic bit-sample queue between the byte-granular
// encoder and the sample-granular output. It grows on demand and never
// shrinks.
type sampleFIFO struct {
	buf   []byte
	head  int
	count int
}

func (q *sampleFIFO) reset(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if cap(q.buf) < capacity {
		q.buf = make([]byte, capacity)
	} else {
		q.buf = q.buf[:cap(q.buf)]
	}
	q.head = 0
	q.count = 0
}

func (q *sampleFIFO) empty() bool { return q.count == 0 }

func (q *sampleFIFO) len() int { return q.count }

func (q *sampleFIFO) push(samples []byte) {
	if q.count+len(samples) > len(q.buf) {
		q.grow(q.count + len(samples))
	}
	for _, s := range samples {
		q.buf[(q.head+q.count)%len(q.buf)] = s
		q.count++
	}
}

func (q *sampleFIFO) pop() byte {
	s := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return s
}

func (q *sampleFIFO) grow(need int) {
	capacity := len(q.buf) * 2
	if capacity < need {
		capacity = need
	}
	next := make([]byte, capacity)
	for i := 0; i < q.count; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}
