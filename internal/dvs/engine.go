package dvs

import (
	"log"

	"github.com/karanvir/timewax/internal/audio"
)

// Correlator is the external position/pitch decoder for a control signal.
// One engine instance exclusively owns its correlator.
type Correlator interface {
	// Submit feeds interleaved stereo int16 samples.
	Submit(pcm []int16, frames int)
	// Pitch returns the playback speed ratio (1.0 = nominal forward).
	Pitch() float64
	// Position returns the absolute position in milliseconds, or -1 when
	// the correlator has no lock.
	Position() int
}

// CorrelatorFactory builds a correlator for a format descriptor.
type CorrelatorFactory func(desc Descriptor, rpm RPM, filter PitchFilter, sampleRate int) (Correlator, error)

// Config holds the quality engine's host-settable parameters.
type Config struct {
	Format        Format
	RPM           RPM
	Filter        PitchFilter
	LeadInSeconds float64
	Tempo         float64 // reference tempo scaled by pitch for the Tempo output
	Thresholds    QualityThresholds
}

// Output is republished once per tick.
type Output struct {
	Speed           float64 `json:"speed"`
	Tempo           float64 `json:"tempo"`
	PositionSeconds float64 `json:"position_seconds"`
	TimecodeMS      int     `json:"timecode_ms"`
	Quality         float64 `json:"quality"`
	Valid           bool    `json:"valid"`
}

// Engine converts stereo ticks to the correlator's native format, reads back
// pitch and position, and derives a windowed signal-quality score. It must
// only be used from the tick thread; reconfiguration happens inline there.
type Engine struct {
	cfg     Config
	factory CorrelatorFactory

	correlator Correlator
	sampleRate int
	work       []int16 // conversion buffer, grows and never shrinks

	ring         qualityRing
	lastPosition int
	lastPitch    float64

	Out Output
}

// NewEngine creates an unprepared quality engine.
func NewEngine(cfg Config, factory CorrelatorFactory) *Engine {
	if cfg.Thresholds == (QualityThresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.RPM != RPM45 {
		cfg.RPM = RPM33
	}
	return &Engine{cfg: cfg, factory: factory, lastPosition: -1}
}

// Prepare binds the engine to a sample rate, reserves the conversion buffer,
// and builds the correlator.
func (e *Engine) Prepare(sampleRate int) {
	e.sampleRate = sampleRate
	if cap(e.work) < 2*audio.FrameSize {
		e.work = make([]int16, 0, 2*audio.FrameSize)
	}
	e.rebuild()
}

// SetFormat tears down and rebuilds the correlator for a new pressing.
func (e *Engine) SetFormat(f Format) {
	e.cfg.Format = f
	e.rebuild()
}

// SetRPM rebuilds the correlator for a new turntable speed.
func (e *Engine) SetRPM(rpm RPM) {
	if rpm != RPM45 {
		rpm = RPM33
	}
	e.cfg.RPM = rpm
	e.rebuild()
}

// SetPitchFilter rebuilds the correlator with a new pitch filter.
func (e *Engine) SetPitchFilter(f PitchFilter) {
	e.cfg.Filter = f
	e.rebuild()
}

// SetLeadIn changes the lead-in subtraction. Takes effect next tick.
func (e *Engine) SetLeadIn(seconds float64) { e.cfg.LeadInSeconds = seconds }

// SetTempo changes the reference tempo. Takes effect next tick.
func (e *Engine) SetTempo(bpm float64) { e.cfg.Tempo = bpm }

// Config returns the current parameters.
func (e *Engine) Config() Config { return e.cfg }

// rebuild discards the correlator and quality state and starts over with the
// current parameters. A failed format lookup falls back to the default
// descriptor; if even that fails the engine stays uninitialized and emits
// invalid outputs until reconfigured.
func (e *Engine) rebuild() {
	e.correlator = nil
	e.ring.reset()
	e.lastPosition = -1
	e.lastPitch = 0

	if e.sampleRate <= 0 {
		return
	}
	desc := LookupFormat(e.cfg.Format)
	c, err := e.factory(desc, e.cfg.RPM, e.cfg.Filter, e.sampleRate)
	if err != nil {
		log.Printf("dvs: correlator for %s failed (%v), falling back to %s",
			desc.Name, err, descriptors[DefaultFormat].Name)
		c, err = e.factory(descriptors[DefaultFormat], e.cfg.RPM, e.cfg.Filter, e.sampleRate)
		if err != nil {
			log.Printf("dvs: fallback correlator failed: %v", err)
			return
		}
	}
	e.correlator = c
}

// Process feeds one tick of stereo audio and refreshes the outputs. Without
// two channels, frames, or a correlator it emits zeroed, invalid outputs.
func (e *Engine) Process(tick audio.Tick, left, right []float64) {
	frames := tick.Frames
	if e.correlator == nil || frames <= 0 || len(left) < frames || len(right) < frames {
		e.Out = Output{TimecodeMS: -1}
		return
	}

	if cap(e.work) < frames*2 {
		e.work = make([]int16, frames*2)
	}
	e.work = e.work[:frames*2]
	for i := 0; i < frames; i++ {
		e.work[i*2] = clampSample(left[i])
		e.work[i*2+1] = clampSample(right[i])
	}
	e.correlator.Submit(e.work, frames)

	pitch := e.correlator.Pitch()
	e.Out.Speed = pitch
	e.Out.Tempo = pitch * e.cfg.Tempo

	positionMS := e.correlator.Position()
	if positionMS >= 0 {
		positionSec := float64(positionMS) / 1000.0
		e.Out.PositionSeconds = positionSec - e.cfg.LeadInSeconds
		e.Out.TimecodeMS = positionMS
		e.Out.Valid = true
	} else {
		e.Out.PositionSeconds = 0
		e.Out.TimecodeMS = -1
		e.Out.Valid = false
	}

	pq := positionQuality(e.lastPosition, positionMS)
	e.lastPosition = positionMS

	pp := pitchQuality(e.ring.len() > 0, e.lastPitch, pitch, e.cfg.Thresholds)
	e.lastPitch = pitch

	e.ring.push(pq + pp)
	e.Out.Quality = clamp01(e.ring.average() / 200.0)
}

func clampSample(v float64) int16 {
	s := v * 32767.0
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int16(s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
