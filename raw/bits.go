package raw

import (
	"math"
	"strconv"
	"strings"
)

// tolerance is the largest accepted deviation of a duration from its nearest
// whole number of units, as a fraction of one unit.
const tolerance = 0.1

// UnsignedToBits returns value as width binary digits, most significant
// first. Negative values are taken as width-bit two's complement.
func UnsignedToBits(value int, width int) (string, error) {
	v := int64(value)
	if v < 0 {
		v += 1 << width
	}
	limit := int64(1)<<width - 1
	if v < 0 || v > limit {
		return "", &DomainError{
			Field: strconv.Itoa(width) + "-bit field",
			Value: int64(value),
			Min:   -(limit + 1),
			Max:   limit,
		}
	}

	bits := strconv.FormatInt(v, 2)
	return strings.Repeat("0", width-len(bits)) + bits, nil
}

// BitsToUnsigned concatenates binary digits, first digit most significant.
func BitsToUnsigned(bits string) (uint64, error) {
	var v uint64
	for i, b := range bits {
		v <<= 1
		switch b {
		case '0':
		case '1':
			v |= 1
		default:
			return 0, &DomainError{Field: "bit " + strconv.Itoa(i), Value: int64(b), Min: '0', Max: '1'}
		}
	}
	return v, nil
}

// Bitify splits every duration of s into unit ticks carrying its sign.
func Bitify(s Signal, unit float64) ([]int, error) {
	ticks := make([]int, 0, len(s))
	for _, d := range s {
		n, err := unitCount(d, unit)
		if err != nil {
			return nil, err
		}
		ticks = appendRun(ticks, d, n)
	}
	return ticks, nil
}

// Unbitify rescales ticks by unit.
func Unbitify(ticks []int, unit float64) Signal {
	s := make(Signal, len(ticks))
	for i, t := range ticks {
		s[i] = float64(t) * unit
	}
	return s
}

// Scaled wraps a tick encoder into one producing durations of unit length.
func Scaled[P any](unit float64, encode func(P) ([]int, error)) func(P) (Signal, error) {
	return func(p P) (Signal, error) {
		ticks, err := encode(p)
		if err != nil {
			return nil, err
		}
		return Unbitify(ticks, unit), nil
	}
}

func unitCount(d float64, unit float64) (int, error) {
	magnitude := math.Abs(d)
	n := math.Round(magnitude / unit)
	deviation := math.Abs(magnitude-n*unit) / unit
	if deviation > tolerance {
		return 0, &TimingToleranceError{Duration: d, Unit: unit, Deviation: deviation}
	}
	return int(n), nil
}

func appendRun(ticks []int, d float64, n int) []int {
	tick := 1
	if d < 0 {
		tick = -1
	}
	for range n {
		ticks = append(ticks, tick)
	}
	return ticks
}

// BitifyFrames is Bitify for captured frame sequences: spaces of at least
// gapUnits are inter-frame silence and are rounded without the tolerance
// check, since capture hardware does not keep them on the unit grid.
func BitifyFrames(s Signal, unit float64, gapUnits int) ([]int, error) {
	ticks := make([]int, 0, len(s))
	for _, d := range s {
		if d < 0 && math.Round(-d/unit) >= float64(gapUnits) {
			ticks = appendRun(ticks, d, int(math.Round(-d/unit)))
			continue
		}
		n, err := unitCount(d, unit)
		if err != nil {
			return nil, err
		}
		ticks = appendRun(ticks, d, n)
	}
	return ticks, nil
}
