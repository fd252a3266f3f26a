package protocol

import (
	"github.com/eivy/irgen/raw"
)

// RC6 mode 0 timings in units of 444us.
// https://www.sbprojects.net/knowledge/ir/rc6.php
const (
	rc6Unit         = 444.0
	rc6LeadMark     = 6
	rc6LeadSpace    = 2
	rc6TrailSpace   = 6
	rc6ModeBits     = 3
	rc6DeviceBits   = 8
	rc6FunctionBits = 8
)

var (
	rc6One  = []int{1, -1}
	rc6Zero = []int{-1, 1}
	// The toggle bit lasts twice as long as the other bits.
	rc6ToggleOne  = []int{1, 1, -1, -1}
	rc6ToggleZero = []int{-1, -1, 1, 1}
)

var encodeRC6 = raw.Scaled(rc6Unit, rc6Ticks)

func rc6Bits(ticks []int, bits string) []int {
	for _, b := range bits {
		if b == '1' {
			ticks = append(ticks, rc6One...)
		} else {
			ticks = append(ticks, rc6Zero...)
		}
	}
	return ticks
}

func rc6Ticks(params Params) ([]int, error) {
	if err := checkRange("rc6 toggle", params.Toggle, 0, 1); err != nil {
		return nil, err
	}
	fields := []struct {
		name  string
		value int
		width int
	}{
		{"rc6 mode", params.Mode, rc6ModeBits},
		{"rc6 device", params.Device, rc6DeviceBits},
		{"rc6 function", params.Function, rc6FunctionBits},
	}
	bits := make([]string, len(fields))
	for i, f := range fields {
		if err := checkRange(f.name, f.value, 0, 1<<f.width-1); err != nil {
			return nil, err
		}
		b, err := raw.UnsignedToBits(f.value, f.width)
		if err != nil {
			return nil, err
		}
		bits[i] = b
	}

	ticks := make([]int, 0, 2+2*20+1)
	ticks = append(ticks, rc6LeadMark, -rc6LeadSpace)
	ticks = rc6Bits(ticks, "1")
	ticks = rc6Bits(ticks, bits[0])
	if params.Toggle == 1 {
		ticks = append(ticks, 2, -2)
	} else {
		ticks = append(ticks, -2, 2)
	}
	ticks = rc6Bits(ticks, bits[1])
	ticks = rc6Bits(ticks, bits[2])
	return append(ticks, -rc6TrailSpace), nil
}

func decodeRC6(r *tickReader) (Params, error) {
	leader := make([]int, 0, rc6LeadMark+rc6LeadSpace)
	for range rc6LeadMark {
		leader = append(leader, 1)
	}
	for range rc6LeadSpace {
		leader = append(leader, -1)
	}
	if err := r.expect("leader", leader...); err != nil {
		return Params{}, err
	}
	if err := r.expect("start bit", rc6One...); err != nil {
		return Params{}, err
	}

	modeBits, err := r.bits("mode", rc6ModeBits, rc6One, rc6Zero)
	if err != nil {
		return Params{}, err
	}
	toggle, err := r.bit("toggle bit", rc6ToggleOne, rc6ToggleZero)
	if err != nil {
		return Params{}, err
	}
	deviceBits, err := r.bits("device", rc6DeviceBits, rc6One, rc6Zero)
	if err != nil {
		return Params{}, err
	}
	functionBits, err := r.bits("function", rc6FunctionBits, rc6One, rc6Zero)
	if err != nil {
		return Params{}, err
	}
	r.skipSilence(rc6TrailSpace)

	var values [3]uint64
	for i, bits := range []string{modeBits, deviceBits, functionBits} {
		if values[i], err = raw.BitsToUnsigned(bits); err != nil {
			return Params{}, err
		}
	}

	return Params{
		Device:    int(values[1]),
		Subdevice: -1,
		Function:  int(values[2]),
		Toggle:    int(toggle - '0'),
		Mode:      int(values[0]),
	}, nil
}
