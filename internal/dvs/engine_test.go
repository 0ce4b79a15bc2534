package dvs

import (
	"errors"
	"math"
	"testing"

	"github.com/karanvir/timewax/internal/audio"
)

// stubCorrelator serves scripted pitch/position values and records what it
// was fed.
type stubCorrelator struct {
	pitch    float64
	position int

	desc       Descriptor
	submits    int
	lastFrames int
	lastPCM    []int16
}

func (s *stubCorrelator) Submit(pcm []int16, frames int) {
	s.submits++
	s.lastFrames = frames
	s.lastPCM = append(s.lastPCM[:0], pcm...)
}

func (s *stubCorrelator) Pitch() float64 { return s.pitch }

func (s *stubCorrelator) Position() int { return s.position }

// newStubbed builds an engine whose factory records every correlator it makes.
func newStubbed(cfg Config) (*Engine, *[]*stubCorrelator) {
	created := &[]*stubCorrelator{}
	e := NewEngine(cfg, func(desc Descriptor, rpm RPM, filter PitchFilter, sampleRate int) (Correlator, error) {
		c := &stubCorrelator{position: -1, desc: desc}
		*created = append(*created, c)
		return c, nil
	})
	return e, created
}

func current(created *[]*stubCorrelator) *stubCorrelator {
	return (*created)[len(*created)-1]
}

func stereoTick(e *Engine, left, right float64) {
	l := make([]float64, audio.FrameSize)
	r := make([]float64, audio.FrameSize)
	for i := range l {
		l[i], r[i] = left, right
	}
	e.Process(audio.Tick{Frames: audio.FrameSize, Tempo: 120}, l, r)
}

// --- Outputs ---

func TestEngineUnlocked(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)

	current(created).pitch = 1.0
	stereoTick(e, 0, 0)

	if e.Out.Valid {
		t.Error("Valid = true with no position lock")
	}
	if e.Out.TimecodeMS != -1 {
		t.Errorf("TimecodeMS = %d, want -1", e.Out.TimecodeMS)
	}
	if e.Out.PositionSeconds != 0 {
		t.Errorf("PositionSeconds = %v, want 0", e.Out.PositionSeconds)
	}
}

func TestEngineLockedPosition(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120, LeadInSeconds: 1.0})
	e.Prepare(48000)

	c := current(created)
	c.pitch = 1.0
	c.position = 1500
	stereoTick(e, 0.1, 0.1)

	if !e.Out.Valid {
		t.Fatal("Valid = false with a locked position")
	}
	if e.Out.TimecodeMS != 1500 {
		t.Errorf("TimecodeMS = %d, want raw 1500", e.Out.TimecodeMS)
	}
	if e.Out.PositionSeconds != 0.5 {
		t.Errorf("PositionSeconds = %v, want 0.5 (1.5s minus 1.0s lead-in)", e.Out.PositionSeconds)
	}
}

func TestEngineSpeedAndTempo(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)

	current(created).pitch = 1.02
	stereoTick(e, 0, 0)

	if e.Out.Speed != 1.02 {
		t.Errorf("Speed = %v, want 1.02", e.Out.Speed)
	}
	if math.Abs(e.Out.Tempo-122.4) > 1e-9 {
		t.Errorf("Tempo = %v, want 122.4", e.Out.Tempo)
	}
}

func TestEngineShortInput(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)
	current(created).position = 1000

	short := make([]float64, 10)
	full := make([]float64, audio.FrameSize)
	e.Process(audio.Tick{Frames: audio.FrameSize, Tempo: 120}, short, full)

	if e.Out.Valid || e.Out.TimecodeMS != -1 {
		t.Errorf("Short input produced Out = %+v, want invalid", e.Out)
	}
	if current(created).submits != 0 {
		t.Error("Short input reached the correlator")
	}
}

func TestEngineSampleConversion(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)

	stereoTick(e, 2.0, -2.0) // beyond full scale both ways

	c := current(created)
	if c.lastFrames != audio.FrameSize {
		t.Errorf("Submitted %d frames, want %d", c.lastFrames, audio.FrameSize)
	}
	if len(c.lastPCM) != 2*audio.FrameSize {
		t.Fatalf("Submitted %d samples, want %d interleaved", len(c.lastPCM), 2*audio.FrameSize)
	}
	if c.lastPCM[0] != 32767 {
		t.Errorf("Left sample = %d, want clamped 32767", c.lastPCM[0])
	}
	if c.lastPCM[1] != -32768 {
		t.Errorf("Right sample = %d, want clamped -32768", c.lastPCM[1])
	}
}

// --- Quality ---

func TestEngineQualitySteadyState(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)

	// Steady playback: position advances 10ms per tick, pitch never moves.
	// Position scores 100, pitch scores 0, so the windowed quality settles
	// at exactly 0.5 once the first tick's zero leaves the ring.
	c := current(created)
	c.pitch = 1.0
	c.position = 0
	for i := 0; i < 40; i++ {
		c.position += 10
		stereoTick(e, 0.1, 0.1)

		if e.Out.Quality < 0 || e.Out.Quality > 1 {
			t.Fatalf("Tick %d: Quality = %v, outside [0, 1]", i, e.Out.Quality)
		}
	}
	if e.Out.Quality != 0.5 {
		t.Errorf("Steady-state Quality = %v, want 0.5", e.Out.Quality)
	}
}

func TestEngineFirstTickScoresZero(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)

	// Even a locked, moving signal scores zero on the first tick: there is
	// no prior position or pitch to compare against.
	c := current(created)
	c.pitch = 1.0
	c.position = 500
	stereoTick(e, 0.1, 0.1)

	if e.Out.Quality != 0 {
		t.Errorf("First-tick Quality = %v, want 0", e.Out.Quality)
	}
}

func TestEngineRebuildResetsQuality(t *testing.T) {
	e, created := newStubbed(Config{Tempo: 120})
	e.Prepare(48000)

	c := current(created)
	c.pitch = 1.0
	c.position = 0
	for i := 0; i < 10; i++ {
		c.position += 10
		stereoTick(e, 0.1, 0.1)
	}
	if e.Out.Quality == 0 {
		t.Fatal("Quality never rose before the rebuild")
	}

	e.SetFormat(TraktorA)
	if len(*created) != 2 {
		t.Fatalf("SetFormat built %d correlators total, want 2", len(*created))
	}
	if got := current(created).desc.Name; got != "traktor_a" {
		t.Errorf("Rebuilt correlator for %q, want traktor_a", got)
	}

	c = current(created)
	c.pitch = 1.0
	c.position = 500
	stereoTick(e, 0.1, 0.1)
	if e.Out.Quality != 0 {
		t.Errorf("Quality after rebuild = %v, want 0 (history cleared)", e.Out.Quality)
	}
}

// --- Construction and rebuild ---

func TestEngineRPMNormalized(t *testing.T) {
	e, _ := newStubbed(Config{RPM: RPM(78)})
	if e.Config().RPM != RPM33 {
		t.Errorf("RPM(78) normalized to %v, want RPM33", e.Config().RPM)
	}

	e.Prepare(48000)
	e.SetRPM(RPM45)
	if e.Config().RPM != RPM45 {
		t.Errorf("SetRPM(45) left %v", e.Config().RPM)
	}
}

func TestEngineDefaultThresholds(t *testing.T) {
	e, _ := newStubbed(Config{})
	if e.Config().Thresholds != DefaultThresholds() {
		t.Errorf("Zero thresholds not defaulted: %+v", e.Config().Thresholds)
	}

	custom := QualityThresholds{Low: 1, High: 2}
	e2, _ := newStubbed(Config{Thresholds: custom})
	if e2.Config().Thresholds != custom {
		t.Errorf("Custom thresholds overwritten: %+v", e2.Config().Thresholds)
	}
}

func TestEngineFactoryFallback(t *testing.T) {
	var calls []string
	e := NewEngine(Config{Format: TraktorB, Tempo: 120},
		func(desc Descriptor, rpm RPM, filter PitchFilter, sampleRate int) (Correlator, error) {
			calls = append(calls, desc.Name)
			if desc.Name != "serato_2a" {
				return nil, errors.New("unsupported pressing")
			}
			return &stubCorrelator{position: -1}, nil
		})
	e.Prepare(48000)

	if len(calls) != 2 || calls[0] != "traktor_b" || calls[1] != "serato_2a" {
		t.Fatalf("Factory calls = %v, want [traktor_b serato_2a]", calls)
	}

	stereoTick(e, 0, 0)
	if e.Out.TimecodeMS != -1 {
		t.Errorf("Fallback correlator not running: Out = %+v", e.Out)
	}
}

func TestEngineFactoryDoubleFailure(t *testing.T) {
	e := NewEngine(Config{Tempo: 120},
		func(desc Descriptor, rpm RPM, filter PitchFilter, sampleRate int) (Correlator, error) {
			return nil, errors.New("no correlator here")
		})
	e.Prepare(48000)

	stereoTick(e, 0.1, 0.1)
	if e.Out.Valid || e.Out.TimecodeMS != -1 {
		t.Errorf("Uninitialized engine produced Out = %+v, want invalid", e.Out)
	}
}
