package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"

	soxr "github.com/zaf/resample"
)

// Capture streams interleaved stereo PCM from an input source as tick-sized
// frames. The frame channel applies backpressure, so sources are read no
// faster than the host consumes them.
type Capture struct {
	frameCh chan []int16
	run     func(ctx context.Context) error
}

// Frames returns the channel of captured PCM frames.
func (c *Capture) Frames() <-chan []int16 {
	return c.frameCh
}

// Run reads the source until EOF or cancellation, then closes the frame
// channel.
func (c *Capture) Run(ctx context.Context) error {
	defer close(c.frameCh)
	return c.run(ctx)
}

// NewFFmpegCapture decodes any input FFmpeg can read (file, device, URL) to
// 48kHz stereo PCM via a subprocess.
func NewFFmpegCapture(input string) *Capture {
	c := &Capture{frameCh: make(chan []int16, 100)}
	c.run = func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "ffmpeg",
			"-i", input,
			"-f", "s16le",
			"-acodec", "pcm_s16le",
			"-ar", "48000",
			"-ac", "2",
			"-loglevel", "error",
			"pipe:1",
		)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("ffmpeg stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("ffmpeg start: %w", err)
		}
		if err := c.pump(ctx, stdout); err != nil {
			cmd.Wait()
			return err
		}
		return cmd.Wait()
	}
	return c
}

// NewRawCapture reads raw s16le interleaved stereo PCM from a file. Input at
// a rate other than 48kHz is resampled through soxr before framing.
func NewRawCapture(path string, inputRate int) *Capture {
	c := &Capture{frameCh: make(chan []int16, 100)}
	c.run = func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open raw input: %w", err)
		}
		defer f.Close()

		if inputRate == SampleRate {
			return c.pump(ctx, f)
		}

		// Resample to the engine rate. soxr writes converted PCM into the
		// buffer we read frames back out of.
		var resampled bytes.Buffer
		rs, err := soxr.New(&resampled, float64(inputRate), SampleRate, Channels, soxr.I16, soxr.HighQ)
		if err != nil {
			return fmt.Errorf("create resampler: %w", err)
		}
		defer rs.Close()

		in := make([]byte, 32*1024)
		for {
			n, readErr := f.Read(in)
			if n > 0 {
				if _, err := rs.Write(in[:n]); err != nil {
					return fmt.Errorf("resample: %w", err)
				}
				if err := c.drainFrames(ctx, &resampled, false); err != nil {
					return err
				}
			}
			if readErr == io.EOF {
				return c.drainFrames(ctx, &resampled, true)
			}
			if readErr != nil {
				return fmt.Errorf("read raw input: %w", readErr)
			}
		}
	}
	return c
}

// pump reads tick-sized chunks from r and forwards them as frames.
func (c *Capture) pump(ctx context.Context, r io.Reader) error {
	buf := make([]byte, FrameBytes)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			log.Println("capture: input drained")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		select {
		case c.frameCh <- BytesToSamples(buf):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drainFrames moves whole frames out of the resample buffer. With flush set,
// a final partial frame is zero-padded and sent.
func (c *Capture) drainFrames(ctx context.Context, buf *bytes.Buffer, flush bool) error {
	for buf.Len() >= FrameBytes {
		frame := make([]byte, FrameBytes)
		buf.Read(frame)
		select {
		case c.frameCh <- BytesToSamples(frame):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if flush && buf.Len() > 0 {
		frame := make([]byte, FrameBytes)
		copy(frame, buf.Bytes())
		buf.Reset()
		select {
		case c.frameCh <- BytesToSamples(frame):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
