package audio

import "encoding/binary"

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToSamples converts little-endian bytes to int16 samples.
// An odd trailing byte is dropped.
func BytesToSamples(buf []byte) []int16 {
	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
	}
	return samples
}

// Deinterleave splits an interleaved stereo int16 frame into float64
// left/right channels in [-1, 1]. The destination slices are grown as needed
// and returned.
func Deinterleave(pcm []int16, left, right []float64) ([]float64, []float64) {
	n := len(pcm) / 2
	if cap(left) < n {
		left = make([]float64, n)
	}
	if cap(right) < n {
		right = make([]float64, n)
	}
	left, right = left[:n], right[:n]
	for i := 0; i < n; i++ {
		left[i] = float64(pcm[i*2]) / 32768.0
		right[i] = float64(pcm[i*2+1]) / 32768.0
	}
	return left, right
}

// MonoToStereoPCM converts a mono float64 buffer in [-1, 1] to an interleaved
// stereo int16 frame, duplicating the channel and clipping out-of-range input.
func MonoToStereoPCM(mono []float64) []int16 {
	out := make([]int16, len(mono)*2)
	for i, v := range mono {
		s := v * 32767.0
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		out[i*2] = int16(s)
		out[i*2+1] = int16(s)
	}
	return out
}
