package config

import (
	"os"
	"strconv"

	"github.com/karanvir/timewax/internal/dvs"
	"github.com/karanvir/timewax/internal/ltc"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Input
	Source    string // loopback, file, raw
	Input     string // path/URL for file and raw sources
	InputRate int    // raw source sample rate

	// LTC decode
	OffsetSeconds int
	Unit          ltc.OutputUnit
	Rate          ltc.RateStandard
	QueueDepth    int

	// LTC encode
	EncodeOffset int
	EncodeRate   ltc.RateStandard
	Tempo        float64 // reference tempo, BPM

	// DVS
	VinylFormat dvs.Format
	RPM         dvs.RPM
	PitchFilter dvs.PitchFilter
	LeadIn      float64 // seconds
}

// Load reads configuration from environment variables with sane defaults.
// Unparseable values fall back to their defaults.
func Load() Config {
	return Config{
		Port: envInt("TIMEWAX_PORT", 8080),

		Source:    envStr("TIMEWAX_SOURCE", "loopback"),
		Input:     envStr("TIMEWAX_INPUT", ""),
		InputRate: envInt("TIMEWAX_INPUT_RATE", 48000),

		OffsetSeconds: envInt("TIMEWAX_OFFSET", 0),
		Unit:          envUnit("TIMEWAX_UNIT", ltc.Seconds),
		Rate:          envRate("TIMEWAX_RATE", ltc.RateAuto),
		QueueDepth:    envInt("TIMEWAX_QUEUE", ltc.DefaultQueueDepth),

		EncodeOffset: envInt("TIMEWAX_ENC_OFFSET", 0),
		EncodeRate:   envRate("TIMEWAX_ENC_RATE", ltc.Rate30),
		Tempo:        envFloat("TIMEWAX_TEMPO", 120.0),

		VinylFormat: envFormat("TIMEWAX_VINYL", dvs.DefaultFormat),
		RPM:         envRPM("TIMEWAX_RPM", dvs.RPM33),
		PitchFilter: envFilter("TIMEWAX_PITCH_FILTER", dvs.FilterModern),
		LeadIn:      envFloat("TIMEWAX_LEADIN", 0),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envUnit(key string, fallback ltc.OutputUnit) ltc.OutputUnit {
	if v := os.Getenv(key); v != "" {
		if u, err := ltc.ParseOutputUnit(v); err == nil {
			return u
		}
	}
	return fallback
}

func envRate(key string, fallback ltc.RateStandard) ltc.RateStandard {
	if v := os.Getenv(key); v != "" {
		if r, err := ltc.ParseRateStandard(v); err == nil {
			return r
		}
	}
	return fallback
}

func envFormat(key string, fallback dvs.Format) dvs.Format {
	if v := os.Getenv(key); v != "" {
		if f, err := dvs.ParseFormat(v); err == nil {
			return f
		}
	}
	return fallback
}

func envRPM(key string, fallback dvs.RPM) dvs.RPM {
	if v := os.Getenv(key); v == "45" {
		return dvs.RPM45
	} else if v == "33" {
		return dvs.RPM33
	}
	return fallback
}

func envFilter(key string, fallback dvs.PitchFilter) dvs.PitchFilter {
	switch os.Getenv(key) {
	case "modern":
		return dvs.FilterModern
	case "legacy":
		return dvs.FilterLegacy
	}
	return fallback
}
