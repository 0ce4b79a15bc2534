package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRawCapture(t *testing.T) {
	// Two full frames plus a partial tail, which pump discards.
	path := filepath.Join(t.TempDir(), "input.pcm")
	data := make([]byte, 2*FrameBytes+100)
	for i := range data {
		data[i] = byte(i)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewRawCapture(path, SampleRate)
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(context.Background()) }()

	frames := 0
	for frame := range c.Frames() {
		if len(frame) != FrameSamples {
			t.Errorf("Frame %d length = %d, want %d", frames, len(frame), FrameSamples)
		}
		frames++
	}
	if frames != 2 {
		t.Errorf("Received %d frames, want 2", frames)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run returned %v, want nil at EOF", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after EOF")
	}
}

func TestRawCaptureMissingFile(t *testing.T) {
	c := NewRawCapture(filepath.Join(t.TempDir(), "nope.pcm"), SampleRate)
	if err := c.Run(context.Background()); err == nil {
		t.Error("Run succeeded on a missing input file")
	}
}

func TestRawCaptureCancel(t *testing.T) {
	// A source bigger than the frame channel buffer keeps Run blocked on a
	// send until cancellation unblocks it.
	path := filepath.Join(t.TempDir(), "input.pcm")
	if err := os.WriteFile(path, make([]byte, 200*FrameBytes), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := NewRawCapture(path, SampleRate)
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
