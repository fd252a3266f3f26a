package protocol

import (
	"github.com/eivy/irgen/raw"
)

// RCA-38 timings in units of 460us. The frame carries device and function
// twice, the second time with inverted bits.
const (
	rca38Unit       = 460.0
	rca38LeadMark   = 8
	rca38LeadSpace  = 8
	rca38Bit1Space  = 4
	rca38Bit0Space  = 2
	rca38TrailMark  = 1
	rca38TrailSpace = 16
)

var encodeRCA38 = raw.Scaled(rca38Unit, rca38Ticks)

func rca38Ticks(params Params) ([]int, error) {
	if err := checkRange("rca38 device", params.Device, 0, 15); err != nil {
		return nil, err
	}
	if err := checkRange("rca38 function", params.Function, 0, 255); err != nil {
		return nil, err
	}
	device, err := raw.UnsignedToBits(params.Device, 4)
	if err != nil {
		return nil, err
	}
	function, err := raw.UnsignedToBits(params.Function, 8)
	if err != nil {
		return nil, err
	}
	bits := device + function

	ticks := make([]int, 0, 2+4*len(bits)+2)
	ticks = append(ticks, rca38LeadMark, -rca38LeadSpace)
	for _, inverted := range []bool{false, true} {
		for _, b := range bits {
			if (b == '1') != inverted {
				ticks = append(ticks, 1, -rca38Bit1Space)
			} else {
				ticks = append(ticks, 1, -rca38Bit0Space)
			}
		}
	}
	return append(ticks, rca38TrailMark, -rca38TrailSpace), nil
}
