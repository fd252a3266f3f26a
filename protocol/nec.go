package protocol

import (
	"github.com/eivy/irgen/raw"
)

// NEC timings in units of 562.5us.
// https://www.sbprojects.net/knowledge/ir/nec.php
const (
	necUnit = 562.5

	necLeadMark      = 16 // 9ms, nec1 and necx1
	necShortLeadMark = 8  // 4.5ms, nec2 and necx2
	necLeadSpace     = 8
	necBitMark       = 1
	necBit0Space     = 1
	necBit1Space     = 3
	necTrailMark     = 1
	necTrailSpace    = 3
)

func encodeNEC(p Protocol, params Params) (raw.Signal, error) {
	return raw.Scaled(necUnit, func(params Params) ([]int, error) {
		return necTicks(p, params)
	})(params)
}

func necTicks(p Protocol, params Params) ([]int, error) {
	ticks := make([]int, 0, 4+4*16)
	if p.Family == NEC1 || p.Family == NECX1 {
		ticks = append(ticks, necLeadMark, -necLeadSpace)
	} else {
		ticks = append(ticks, necShortLeadMark, -necLeadSpace)
	}

	subdevice := params.Subdevice
	if subdevice < 0 {
		// 8-bit addresses send the inverted address as validation.
		subdevice = ^params.Device
	}

	if p.Suffix != SuffixF16 {
		if err := checkRange("function", params.Function, 0, 0xFF); err != nil {
			return nil, err
		}
	}

	var check int
	switch p.Suffix {
	case SuffixY1:
		check = params.Function ^ 0x7F
	case SuffixY2:
		check = params.Function ^ 0xFE
	case SuffixY3:
		check = params.Function ^ 0x7E
	case SuffixF16:
		if err := checkRange("function", params.Function, 0, 0xFFFF); err != nil {
			return nil, err
		}
		check = (params.Function >> 8) & 0xFF
	default:
		check = params.Function ^ 0xFF
	}

	for _, b := range []int{params.Device, subdevice, params.Function & 0xFF, check} {
		var err error
		if ticks, err = appendNECByte(ticks, b); err != nil {
			return nil, err
		}
	}

	return append(ticks, necTrailMark, -necTrailSpace), nil
}

// appendNECByte sends b least significant bit first.
func appendNECByte(ticks []int, b int) ([]int, error) {
	bits, err := raw.UnsignedToBits(b, 8)
	if err != nil {
		return nil, err
	}
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] == '1' {
			ticks = append(ticks, necBitMark, -necBit1Space)
		} else {
			ticks = append(ticks, necBitMark, -necBit0Space)
		}
	}
	return ticks, nil
}
