package ltc

// Frame is one decoded SMPTE timecode frame as reported by the decoder.
type Frame struct {
	Hours     int
	Mins      int
	Secs      int
	Frame     int
	DropFrame bool
	Reverse   bool
	Volume    float64 // estimated signal level, dBFS
}

// Seconds returns the frame's elapsed time at the given frame rate.
func (f Frame) Seconds(fps float64) float64 {
	return float64(f.Hours)*3600 + float64(f.Mins)*60 + float64(f.Secs) + float64(f.Frame)/fps
}

// Decoder is the external LTC demodulator the decode engine feeds. One
// engine instance exclusively owns its decoder.
type Decoder interface {
	// Write feeds mono audio samples starting at the given absolute sample
	// position. Decoded frames queue up internally.
	Write(samples []float64, position int64)
	// Read pops the oldest queued frame. ok reports whether one was queued.
	Read() (f Frame, ok bool)
	// Reset discards queued frames and demodulator state.
	Reset()
}

// DecoderFactory builds a decoder. samplesPerFrame is an initial estimate of
// audio frames per video frame; queueDepth bounds the decoded-frame queue.
type DecoderFactory func(samplesPerFrame, queueDepth int) Decoder

// Encoder is the external LTC modulator the encode engine drives byte by
// byte. An LTC frame is ten bytes; the encoder holds the timecode counter.
type Encoder interface {
	// EncodeByte modulates byte index 0-9 of the current frame and returns
	// the bit-samples in the codec's native 0..254 range. speed stretches
	// the bit duration (1.0 = nominal).
	EncodeByte(index int, speed float64) []byte
	// SetTimecode positions the internal counter.
	SetTimecode(hours, mins, secs, frame int)
	// IncTimecode advances the counter by one video frame.
	IncTimecode()
	// BufferSize returns the largest sample count one EncodeByte call can
	// emit, for sizing downstream buffers.
	BufferSize() int
	// Reinit rebinds the encoder to a sample rate and rate standard in
	// place, without reallocation.
	Reinit(sampleRate int, standard RateStandard)
}

// EncoderFactory builds an encoder bound to a sample rate and rate standard.
type EncoderFactory func(sampleRate int, standard RateStandard) Encoder
