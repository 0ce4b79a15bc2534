package ltc

import (
	"time"

	"github.com/karanvir/timewax/internal/audio"
)

// validTimeout is how long the decoder keeps reporting valid after the last
// decoded frame.
const validTimeout = 500 * time.Millisecond

const (
	MinQueueDepth     = 8
	MaxQueueDepth     = 256
	DefaultQueueDepth = 32
)

// DecodeConfig holds the decode engine's host-settable parameters.
type DecodeConfig struct {
	OffsetSeconds int          // added to the decoded time, roughly +/-128000
	Unit          OutputUnit   // unit of the Timecode output
	Rate          RateStandard // RateAuto enables per-frame detection
	QueueDepth    int          // decoded-frame queue depth, 8-256
}

// DecodeOutput is republished once per tick.
type DecodeOutput struct {
	Timecode   float64 `json:"timecode"`
	Valid      bool    `json:"valid"`
	FrameRate  float64 `json:"frame_rate"`
	DropFrame  bool    `json:"drop_frame"`
	Reverse    bool    `json:"reverse"`
	VolumeDBFS float64 `json:"volume_dbfs"`
}

// DecodeEngine feeds audio into an LTC decoder once per tick, drains decoded
// frames, and publishes the latest timecode with a validity timeout. It must
// only be used from the tick thread; reconfiguration happens inline there.
type DecodeEngine struct {
	cfg     DecodeConfig
	factory DecoderFactory

	dec            Decoder
	sampleRate     int
	samplePosition int64
	lastFrame      Frame
	lastValid      time.Time
	now            func() time.Time

	Out DecodeOutput
}

// NewDecodeEngine creates an unprepared decode engine. The factory supplies
// the external decoder at prepare time.
func NewDecodeEngine(cfg DecodeConfig, factory DecoderFactory) *DecodeEngine {
	if cfg.QueueDepth < MinQueueDepth || cfg.QueueDepth > MaxQueueDepth {
		cfg.QueueDepth = DefaultQueueDepth
	}
	return &DecodeEngine{
		cfg:     cfg,
		factory: factory,
		now:     time.Now,
		Out:     DecodeOutput{FrameRate: 30.0, VolumeDBFS: -96.0},
	}
}

// Prepare binds the engine to a sample rate and (re)creates the decoder.
// A rate <= 1 leaves the engine disabled until a valid rate arrives.
func (e *DecodeEngine) Prepare(sampleRate int) {
	e.sampleRate = sampleRate
	e.reinit()
}

func (e *DecodeEngine) reinit() {
	e.dec = nil
	if e.sampleRate <= 1 {
		return
	}
	// Initial audio-frames-per-video-frame estimate, assuming 30fps. The
	// decoder tracks the actual speed dynamically.
	apv := e.sampleRate / 30
	e.dec = e.factory(apv, e.cfg.QueueDepth)
	e.samplePosition = 0
	e.lastValid = e.now()
}

// SetQueueDepth destroys and recreates the decoder with a new queue depth,
// preserving the bound sample rate. Out-of-range values are clamped.
func (e *DecodeEngine) SetQueueDepth(depth int) {
	if depth < MinQueueDepth {
		depth = MinQueueDepth
	} else if depth > MaxQueueDepth {
		depth = MaxQueueDepth
	}
	e.cfg.QueueDepth = depth
	e.reinit()
}

// SetOffset changes the integer-second bias. Takes effect next tick.
func (e *DecodeEngine) SetOffset(seconds int) { e.cfg.OffsetSeconds = seconds }

// SetUnit changes the output unit. Takes effect next tick.
func (e *DecodeEngine) SetUnit(u OutputUnit) { e.cfg.Unit = u }

// SetRate selects an explicit rate standard, or RateAuto for detection.
func (e *DecodeEngine) SetRate(r RateStandard) { e.cfg.Rate = r }

// Config returns the current parameters.
func (e *DecodeEngine) Config() DecodeConfig { return e.cfg }

// SamplePosition returns the monotonic count of samples fed so far.
func (e *DecodeEngine) SamplePosition() int64 { return e.samplePosition }

// Process feeds one tick's samples, drains decoded frames keeping only the
// most recent, and refreshes the outputs. The validity timeout runs every
// tick whether or not a frame decoded.
func (e *DecodeEngine) Process(tick audio.Tick, samples []float64) {
	if e.dec == nil {
		return
	}
	frames := tick.Frames
	if frames <= 0 {
		return
	}
	if frames > len(samples) {
		frames = len(samples)
	}

	e.dec.Write(samples[:frames], e.samplePosition)
	e.samplePosition += int64(frames)

	got := false
	for {
		f, ok := e.dec.Read()
		if !ok {
			break
		}
		got = true
		e.lastFrame = f
	}

	if got {
		e.lastValid = e.now()
		e.publish(e.lastFrame)
	}

	e.checkTimeout()
}

func (e *DecodeEngine) publish(f Frame) {
	standard := e.cfg.Rate
	if standard == RateAuto {
		standard = DetectRate(f.Frame, f.DropFrame)
	}
	fps := standard.FPS()

	seconds := f.Seconds(fps) + float64(e.cfg.OffsetSeconds)

	e.Out.Timecode = e.cfg.Unit.Convert(seconds)
	e.Out.Valid = true
	e.Out.FrameRate = fps
	e.Out.DropFrame = f.DropFrame
	e.Out.Reverse = f.Reverse
	e.Out.VolumeDBFS = f.Volume
}

func (e *DecodeEngine) checkTimeout() {
	if e.now().Sub(e.lastValid) > validTimeout {
		e.Out.Valid = false
	}
}
