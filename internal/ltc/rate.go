package ltc

import "fmt"

// RateStandard identifies an SMPTE frame-rate standard.
type RateStandard int

const (
	Rate24 RateStandard = iota
	Rate25
	Rate2997 // 29.97 drop-frame
	Rate30
	RateAuto // detect from the incoming stream
)

// FPS returns the nominal frames per second for the standard. Auto defaults
// to 30 until detection has something to go on.
func (r RateStandard) FPS() float64 {
	switch r {
	case Rate24:
		return 24.0
	case Rate25:
		return 25.0
	case Rate2997:
		return 29.97
	case Rate30:
		return 30.0
	default:
		return 30.0
	}
}

// FramesPerSecond returns the integer frame count used for timecode counting
// (29.97 counts 30 frames and drops numbers instead).
func (r RateStandard) FramesPerSecond() int {
	switch r {
	case Rate24:
		return 24
	case Rate25:
		return 25
	default:
		return 30
	}
}

func (r RateStandard) String() string {
	switch r {
	case Rate24:
		return "24"
	case Rate25:
		return "25"
	case Rate2997:
		return "29.97"
	case Rate30:
		return "30"
	case RateAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseRateStandard resolves a rate name from configuration.
func ParseRateStandard(s string) (RateStandard, error) {
	switch s {
	case "24":
		return Rate24, nil
	case "25":
		return Rate25, nil
	case "29.97", "29.97df", "drop":
		return Rate2997, nil
	case "30":
		return Rate30, nil
	case "auto":
		return RateAuto, nil
	default:
		return RateAuto, fmt.Errorf("unknown rate standard %q", s)
	}
}

// DetectRate classifies the stream's rate standard from one frame's evidence.
// The drop-frame bit is decisive; otherwise the frame number narrows it down.
// Streams running below frame number 24 cannot be told apart from 24 fps
// until a higher frame number shows up later in the same stream.
func DetectRate(frameNumber int, dropFrame bool) RateStandard {
	if dropFrame {
		return Rate2997
	}
	if frameNumber >= 25 {
		return Rate30
	}
	if frameNumber >= 24 {
		return Rate25
	}
	return Rate24
}
