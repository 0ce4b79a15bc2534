// Package biphase is a pure-Go LTC codec: SMPTE 80-bit frame packing and
// biphase-mark modulation/demodulation. The engines in internal/ltc consume
// it only through their codec interfaces, so it can be swapped for a cgo
// binding without touching them.
package biphase

import "github.com/karanvir/timewax/internal/ltc"

// An LTC frame is 80 bits: 64 data bits followed by the 16-bit sync word
// 0011 1111 1111 1101, transmitted first-bit-first.
const (
	frameBits = 80
	dataBits  = 64
	syncWord  = 0x3FFD // first transmitted sync bit in the MSB
)

// Data-bit positions in transmit order.
const (
	bitFrameUnits = 0  // 4 bits BCD
	bitFrameTens  = 8  // 2 bits
	bitDropFrame  = 10 // flag
	bitSecsUnits  = 16 // 4 bits BCD
	bitSecsTens   = 24 // 3 bits
	bitMinsUnits  = 32 // 4 bits BCD
	bitMinsTens   = 40 // 3 bits
	bitHoursUnits = 48 // 4 bits BCD
	bitHoursTens  = 56 // 2 bits
)

// packFrame lays out a timecode as the ten bytes the encoder walks through.
// Bit i of the frame is bit i%8 of byte i/8, so emitting bytes LSB-first
// yields the transmit order. User bit groups stay zero.
func packFrame(hours, mins, secs, frame int, dropFrame bool) [10]byte {
	var b [10]byte
	set := func(pos, width, value int) {
		for i := 0; i < width; i++ {
			if value>>(i)&1 == 1 {
				b[(pos+i)/8] |= 1 << ((pos + i) % 8)
			}
		}
	}
	set(bitFrameUnits, 4, frame%10)
	set(bitFrameTens, 2, frame/10)
	if dropFrame {
		set(bitDropFrame, 1, 1)
	}
	set(bitSecsUnits, 4, secs%10)
	set(bitSecsTens, 3, secs/10)
	set(bitMinsUnits, 4, mins%10)
	set(bitMinsTens, 3, mins/10)
	set(bitHoursUnits, 4, hours%10)
	set(bitHoursTens, 2, hours/10)

	// Sync word, transmit order bits 64-79.
	for i := 0; i < 16; i++ {
		if syncWord>>(15-i)&1 == 1 {
			b[(dataBits+i)/8] |= 1 << ((dataBits + i) % 8)
		}
	}
	return b
}

// unpackData decodes the 64 data bits of a frame. The register holds the
// first transmitted bit in its MSB, the way the demodulator shifts bits in.
func unpackData(data uint64) ltc.Frame {
	bit := func(pos int) int {
		return int(data >> (63 - pos) & 1)
	}
	field := func(pos, width int) int {
		v := 0
		for i := 0; i < width; i++ {
			v |= bit(pos+i) << i
		}
		return v
	}
	return ltc.Frame{
		Frame:     field(bitFrameUnits, 4) + 10*field(bitFrameTens, 2),
		Secs:      field(bitSecsUnits, 4) + 10*field(bitSecsTens, 3),
		Mins:      field(bitMinsUnits, 4) + 10*field(bitMinsTens, 3),
		Hours:     field(bitHoursUnits, 4) + 10*field(bitHoursTens, 2),
		DropFrame: bit(bitDropFrame) == 1,
	}
}
