package audio

import "testing"

func TestFrameConstants(t *testing.T) {
	// 48kHz at 20ms per tick.
	if FrameSize != SampleRate/50 {
		t.Errorf("FrameSize = %d, want %d", FrameSize, SampleRate/50)
	}
	if FrameSamples != FrameSize*Channels {
		t.Errorf("FrameSamples = %d, want %d", FrameSamples, FrameSize*Channels)
	}
	if FrameBytes != FrameSamples*2 {
		t.Errorf("FrameBytes = %d, want %d", FrameBytes, FrameSamples*2)
	}
}

func TestSamplesBytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345, -12345}
	buf := SamplesToBytes(samples)
	if len(buf) != len(samples)*2 {
		t.Fatalf("Byte length = %d, want %d", len(buf), len(samples)*2)
	}

	back := BytesToSamples(buf)
	if len(back) != len(samples) {
		t.Fatalf("Round trip length = %d, want %d", len(back), len(samples))
	}
	for i, s := range samples {
		if back[i] != s {
			t.Errorf("Sample %d round-tripped to %d, want %d", i, back[i], s)
		}
	}
}

func TestBytesToSamplesOddTail(t *testing.T) {
	got := BytesToSamples([]byte{0x01, 0x02, 0x03})
	if len(got) != 1 {
		t.Errorf("Odd buffer produced %d samples, want 1", len(got))
	}
}

func TestDeinterleave(t *testing.T) {
	pcm := []int16{16384, -16384, 32767, -32768}
	left, right := Deinterleave(pcm, nil, nil)

	if len(left) != 2 || len(right) != 2 {
		t.Fatalf("Channel lengths = %d/%d, want 2/2", len(left), len(right))
	}
	if left[0] != 0.5 || right[0] != -0.5 {
		t.Errorf("Frame 0 = %v/%v, want 0.5/-0.5", left[0], right[0])
	}
	if right[1] != -1.0 {
		t.Errorf("Right full scale = %v, want -1.0", right[1])
	}
	if left[1] >= 1.0 || left[1] < 0.999 {
		t.Errorf("Left full scale = %v, want just under 1.0", left[1])
	}
}

func TestDeinterleaveReusesBuffers(t *testing.T) {
	left := make([]float64, 0, 8)
	right := make([]float64, 0, 8)
	pcm := []int16{100, 200, 300, 400}

	l2, r2 := Deinterleave(pcm, left, right)
	if cap(l2) != 8 || cap(r2) != 8 {
		t.Errorf("Capacities = %d/%d, want original 8/8", cap(l2), cap(r2))
	}

	// A bigger frame forces a reallocation.
	big := make([]int16, 40)
	l3, _ := Deinterleave(big, l2, r2)
	if len(l3) != 20 {
		t.Errorf("Grown channel length = %d, want 20", len(l3))
	}
}

func TestMonoToStereoPCM(t *testing.T) {
	out := MonoToStereoPCM([]float64{0, 0.5, 1.5, -1.5})
	if len(out) != 8 {
		t.Fatalf("Output length = %d, want 8", len(out))
	}

	// Each mono sample lands on both channels.
	for i := 0; i < len(out); i += 2 {
		if out[i] != out[i+1] {
			t.Errorf("Frame %d channels differ: %d vs %d", i/2, out[i], out[i+1])
		}
	}
	if out[2] != 16383 {
		t.Errorf("Half scale = %d, want 16383", out[2])
	}
	if out[4] != 32767 {
		t.Errorf("Overdriven positive = %d, want clipped 32767", out[4])
	}
	if out[6] != -32768 {
		t.Errorf("Overdriven negative = %d, want clipped -32768", out[6])
	}
}
