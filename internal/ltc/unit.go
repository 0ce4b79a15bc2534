package ltc

import "fmt"

// FlicksPerSecond is the flick timebase: 1/705,600,000 s, exactly divisible
// by the common audio and video rates.
const FlicksPerSecond = 705600000.0

// OutputUnit selects the scalar unit of the decoded timecode output.
type OutputUnit int

const (
	Seconds OutputUnit = iota
	Milliseconds
	Microseconds
	Nanoseconds
	UnitFlicks
)

// Convert scales a time in seconds to the unit. Conversion is purely
// multiplicative.
func (u OutputUnit) Convert(seconds float64) float64 {
	switch u {
	case Milliseconds:
		return seconds * 1000.0
	case Microseconds:
		return seconds * 1e6
	case Nanoseconds:
		return seconds * 1e9
	case UnitFlicks:
		return seconds * FlicksPerSecond
	default:
		return seconds
	}
}

func (u OutputUnit) String() string {
	switch u {
	case Seconds:
		return "seconds"
	case Milliseconds:
		return "milliseconds"
	case Microseconds:
		return "microseconds"
	case Nanoseconds:
		return "nanoseconds"
	case UnitFlicks:
		return "flicks"
	default:
		return "unknown"
	}
}

// ParseOutputUnit resolves a unit name from configuration.
func ParseOutputUnit(s string) (OutputUnit, error) {
	switch s {
	case "seconds", "s":
		return Seconds, nil
	case "milliseconds", "ms":
		return Milliseconds, nil
	case "microseconds", "us":
		return Microseconds, nil
	case "nanoseconds", "ns":
		return Nanoseconds, nil
	case "flicks":
		return UnitFlicks, nil
	default:
		return Seconds, fmt.Errorf("unknown output unit %q", s)
	}
}
