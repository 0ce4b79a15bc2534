// Package host drives the timecode engines. Each engine is invoked exactly
// once per tick from a single goroutine; parameter changes are queued and
// applied between ticks on that same goroutine, so the engines never need
// locks of their own.
package host

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/karanvir/timewax/internal/audio"
	"github.com/karanvir/timewax/internal/dvs"
	"github.com/karanvir/timewax/internal/ltc"
)

// Status is a point-in-time snapshot of all engine outputs and parameters.
// Engines may only be touched on the tick goroutine, so anything another
// goroutine wants to read goes through here.
type Status struct {
	Decode         ltc.DecodeOutput `json:"decode"`
	DVS            dvs.Output       `json:"dvs"`
	SamplePosition int64            `json:"sample_position"`
	EncodedFrames  int64            `json:"encoded_frames"`
	Ticks          int64            `json:"ticks"`
	Tempo          float64          `json:"tempo"`

	DecodeConfig ltc.DecodeConfig `json:"-"`
	EncodeConfig ltc.EncodeConfig `json:"-"`
	DVSConfig    dvs.Config       `json:"-"`
}

// Host owns the engines and the tick clock. With no input channel it runs in
// loopback mode: the generated LTC audio feeds the decoder directly.
type Host struct {
	decode  *ltc.DecodeEngine
	encode  *ltc.EncodeEngine
	quality *dvs.Engine

	input   <-chan []int16
	frameCh chan []int16

	reconfigCh chan func()

	mu     sync.RWMutex
	status Status
}

// New creates a host. input may be nil for loopback mode.
func New(decode *ltc.DecodeEngine, encode *ltc.EncodeEngine, quality *dvs.Engine, tempo float64, input <-chan []int16) *Host {
	h := &Host{
		decode:     decode,
		encode:     encode,
		quality:    quality,
		input:      input,
		frameCh:    make(chan []int16, 8),
		reconfigCh: make(chan func(), 16),
	}
	h.status.Tempo = tempo
	return h
}

// Frames returns the channel of generated LTC audio frames.
func (h *Host) Frames() <-chan []int16 {
	return h.frameCh
}

// Reconfigure queues fn to run on the tick goroutine before the next tick.
// All engine parameter changes must go through here.
func (h *Host) Reconfigure(fn func()) {
	select {
	case h.reconfigCh <- fn:
	default:
		// A full queue means the tick loop is not running; apply changes
		// inline, which is safe because nothing else touches the engines.
		fn()
	}
}

// SetTempo changes the host tempo driving the encoder bit clock.
func (h *Host) SetTempo(bpm float64) {
	h.Reconfigure(func() {
		h.mu.Lock()
		h.status.Tempo = bpm
		h.mu.Unlock()
	})
}

// Status returns the latest snapshot.
func (h *Host) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Run prepares the engines and ticks them until ctx is cancelled.
func (h *Host) Run(ctx context.Context) {
	defer close(h.frameCh)

	h.decode.Prepare(audio.SampleRate)
	h.encode.Prepare(audio.SampleRate)
	h.quality.Prepare(audio.SampleRate)

	mode := "capture"
	if h.input == nil {
		mode = "loopback"
	}
	log.Printf("host: engines prepared at %d Hz (%s)", audio.SampleRate, mode)

	h.mu.Lock()
	h.status.DecodeConfig = h.decode.Config()
	h.status.EncodeConfig = h.encode.Config()
	h.status.DVSConfig = h.quality.Config()
	h.mu.Unlock()

	mono := make([]float64, audio.FrameSize)
	silence := make([]float64, audio.FrameSize)
	var left, right []float64

	ticker := time.NewTicker(audio.FrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		h.applyReconfigs()

		tick := audio.Tick{Frames: audio.FrameSize, Tempo: h.Status().Tempo}

		h.encode.Process(tick, mono)
		select {
		case h.frameCh <- audio.MonoToStereoPCM(mono):
		default:
			// nobody consuming generated audio; keep ticking
		}

		if h.input == nil {
			h.decode.Process(tick, mono)
			h.quality.Process(tick, silence, silence)
		} else {
			select {
			case pcm, ok := <-h.input:
				if !ok {
					h.input = nil
					log.Println("host: input ended, switching to loopback")
					continue
				}
				left, right = audio.Deinterleave(pcm, left, right)
				h.decode.Process(tick, left)
				h.quality.Process(tick, left, right)
			default:
				// input starved this tick; engines still run so the
				// decode validity timeout keeps counting
				h.decode.Process(tick, silence)
				h.quality.Process(tick, silence, silence)
			}
		}

		h.mu.Lock()
		h.status.Decode = h.decode.Out
		h.status.DVS = h.quality.Out
		h.status.SamplePosition = h.decode.SamplePosition()
		h.status.EncodedFrames = h.encode.FrameCount()
		h.status.Ticks++
		h.status.DecodeConfig = h.decode.Config()
		h.status.EncodeConfig = h.encode.Config()
		h.status.DVSConfig = h.quality.Config()
		h.mu.Unlock()
	}
}

func (h *Host) applyReconfigs() {
	for {
		select {
		case fn := <-h.reconfigCh:
			fn()
		default:
			return
		}
	}
}
