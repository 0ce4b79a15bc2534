package audio

import "time"

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms tick
	FrameSamples  = FrameSize * Channels // total interleaved samples per tick
	FrameBytes    = FrameSamples * 2     // bytes per tick (int16 = 2 bytes)
)

// Tick describes one audio-processing callback. Engines are invoked exactly
// once per tick with the exact frame count for that tick.
type Tick struct {
	Frames int     // sample-frames in this tick
	Tempo  float64 // host tempo in BPM; scales encoder bit timing
}
