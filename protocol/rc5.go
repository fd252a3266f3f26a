package protocol

import (
	"github.com/eivy/irgen/raw"
)

// RC5 is Manchester coded with a half bit of 889us.
// https://www.sbprojects.net/knowledge/ir/rc5.php
const (
	rc5Unit         = 889.0
	rc5TrailSpace   = 100
	rc5DeviceBits   = 5
	rc5FunctionBits = 6
)

var encodeRC5 = raw.Scaled(rc5Unit, rc5Ticks)

// rc5Bit encodes a one as space, mark and a zero as mark, space.
func rc5Bit(ticks []int, one bool) []int {
	if one {
		return append(ticks, rc5One...)
	}
	return append(ticks, rc5Zero...)
}

func rc5Ticks(params Params) ([]int, error) {
	if err := checkRange("rc5 function", params.Function, 0, 127); err != nil {
		return nil, err
	}
	if err := checkRange("rc5 toggle", params.Toggle, 0, 1); err != nil {
		return nil, err
	}
	if err := checkRange("rc5 device", params.Device, 0, 31); err != nil {
		return nil, err
	}
	device, err := raw.UnsignedToBits(params.Device, rc5DeviceBits)
	if err != nil {
		return nil, err
	}
	function, err := raw.UnsignedToBits(params.Function%64, rc5FunctionBits)
	if err != nil {
		return nil, err
	}

	ticks := make([]int, 0, 2*14+1)
	ticks = rc5Bit(ticks, true)
	// The field bit is the inverted seventh function bit.
	ticks = rc5Bit(ticks, params.Function < 64)
	ticks = rc5Bit(ticks, params.Toggle == 1)
	for _, b := range device + function {
		ticks = rc5Bit(ticks, b == '1')
	}
	return append(ticks, -rc5TrailSpace), nil
}

var (
	rc5One  = []int{-1, 1}
	rc5Zero = []int{1, -1}
)

func decodeRC5(r *tickReader) (Params, error) {
	// The space half of the start bit is indistinguishable from the silence
	// before the frame and has already been consumed.
	if err := r.expect("start bit", 1); err != nil {
		return Params{}, err
	}
	field, err := r.bit("field bit", rc5One, rc5Zero)
	if err != nil {
		return Params{}, err
	}
	toggle, err := r.bit("toggle bit", rc5One, rc5Zero)
	if err != nil {
		return Params{}, err
	}
	deviceBits, err := r.bits("device", rc5DeviceBits, rc5One, rc5Zero)
	if err != nil {
		return Params{}, err
	}
	functionBits, err := r.bits("function", rc5FunctionBits, rc5One, rc5Zero)
	if err != nil {
		return Params{}, err
	}
	r.skipSilence(rc5TrailSpace)

	device, err := raw.BitsToUnsigned(deviceBits)
	if err != nil {
		return Params{}, err
	}
	function, err := raw.BitsToUnsigned(functionBits)
	if err != nil {
		return Params{}, err
	}
	if field == '0' {
		function += 64
	}

	return Params{
		Device:    int(device),
		Subdevice: -1,
		Function:  int(function),
		Toggle:    int(toggle - '0'),
	}, nil
}
