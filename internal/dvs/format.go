package dvs

import "fmt"

// Format identifies a vinyl-emulation timecode pressing.
type Format int

const (
	Serato2A Format = iota
	Serato2B
	SeratoCD
	TraktorA
	TraktorB
	TraktorMK2A
	TraktorMK2B
	TraktorMK2CD
	MixVibesV2
	MixVibes7Inch
	PioneerA
	PioneerB
)

// DefaultFormat is the fallback when a requested format cannot be resolved.
const DefaultFormat = Serato2A

// RPM is the turntable speed the control record is played at.
type RPM int

const (
	RPM33 RPM = 33
	RPM45 RPM = 45
)

// SpeedMultiplier returns the correlator speed factor relative to 33 RPM.
func (r RPM) SpeedMultiplier() float64 {
	if r == RPM45 {
		return 1.35
	}
	return 1.0
}

// PitchFilter selects the correlator's pitch smoothing strategy.
type PitchFilter int

const (
	FilterModern PitchFilter = iota // Kalman-style
	FilterLegacy                    // alpha-beta
)

// Descriptor names a control-signal format for the correlator. CD formats
// carry no lead-in groove.
type Descriptor struct {
	Name string
	CD   bool
}

// descriptors is the static format table. Every Format variant must have an
// entry; LookupFormat falls back to DefaultFormat for anything unresolvable.
var descriptors = map[Format]Descriptor{
	Serato2A:     {Name: "serato_2a"},
	Serato2B:     {Name: "serato_2b"},
	SeratoCD:     {Name: "serato_cd", CD: true},
	TraktorA:     {Name: "traktor_a"},
	TraktorB:     {Name: "traktor_b"},
	TraktorMK2A:  {Name: "traktor_mk2_a"},
	TraktorMK2B:  {Name: "traktor_mk2_b"},
	TraktorMK2CD: {Name: "traktor_mk2_cd", CD: true},
	MixVibesV2:   {Name: "mixvibes_v2"},
	MixVibes7Inch: {Name: "mixvibes_7inch"},
	PioneerA:     {Name: "pioneer_a"},
	PioneerB:     {Name: "pioneer_b"},
}

// LookupFormat resolves a format to its descriptor, falling back to the
// default for unknown variants.
func LookupFormat(f Format) Descriptor {
	if d, ok := descriptors[f]; ok {
		return d
	}
	return descriptors[DefaultFormat]
}

// ParseFormat resolves a format name from configuration.
func ParseFormat(name string) (Format, error) {
	for f, d := range descriptors {
		if d.Name == name {
			return f, nil
		}
	}
	return DefaultFormat, fmt.Errorf("unknown vinyl format %q", name)
}
