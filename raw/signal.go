// Package raw holds the signed duration representation of IR signals and the
// primitives shared by the protocol and wire format codecs.
//
// A duration is in microseconds. Positive durations are marks (carrier on),
// negative durations are spaces (carrier off).
package raw

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Signal is an ordered sequence of signed durations.
type Signal []float64

// Values returns an iterator over the durations of s.
func (s Signal) Values() iter.Seq[float64] {
	return slices.Values(s)
}

// String formats s the way it is printed on the command line: marks carry an
// explicit plus sign.
func (s Signal) String() string {
	fields := make([]string, len(s))
	for i, v := range s {
		f := strconv.FormatFloat(v, 'f', -1, 64)
		if v > 0 {
			f = "+" + f
		}
		fields[i] = f
	}
	return strings.Join(fields, " ")
}

// Parse reads durations as written by Signal.String or any list of signed
// decimal numbers.
func Parse(fields []string) (Signal, error) {
	s := make(Signal, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, &FormatError{Format: "raw", Reason: err.Error()}
		}
		s = append(s, v)
	}
	return s, nil
}

// Simplify merges consecutive durations of the same sign, drops zeros and
// drops any leading space.
func Simplify(seq iter.Seq[float64]) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		var run float64
		for v := range seq {
			switch {
			case v == 0:
				continue
			case run == 0:
				// A signal starts with a mark, leading silence is meaningless.
				if v > 0 {
					run = v
				}
			case (run > 0) == (v > 0):
				run += v
			default:
				if !yield(run) {
					return
				}
				run = v
			}
		}
		if run != 0 {
			yield(run)
		}
	}
}

// Paired restores strict mark, space alternation. Where the input is missing
// a mark or a space a zero duration is inserted. An input ending on a mark is
// closed with trailingSilence.
func Paired(seq iter.Seq[float64], trailingSilence float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		wantMark := true
		for v := range seq {
			if (v < 0) == wantMark {
				if !yield(0) || !yield(v) {
					return
				}
				continue
			}
			if !yield(v) {
				return
			}
			wantMark = !wantMark
		}
		if !wantMark {
			yield(silence(trailingSilence))
		}
	}
}

func silence(v float64) float64 {
	if v > 0 {
		return -v
	}
	return v
}

// Normalize is Paired(Simplify(s)) collected into a Signal.
func Normalize(s Signal, trailingSilence float64) Signal {
	return slices.Collect(Paired(Simplify(s.Values()), trailingSilence))
}

// Side selects the end of a signal Trim works on.
type Side int

const (
	// Leading is the start of the signal.
	Leading Side = iota
	// Trailing is the end of the signal.
	Trailing
)

// Trim drops the run of non-positive durations at one end of s.
func Trim(s Signal, side Side) Signal {
	switch side {
	case Leading:
		i := 0
		for i < len(s) && s[i] <= 0 {
			i++
		}
		return slices.Clone(s[i:])
	default:
		i := len(s)
		for i > 0 && s[i-1] <= 0 {
			i--
		}
		return slices.Clone(s[:i])
	}
}

// Repeat concatenates s with itself n times. No gap is inserted between the
// copies.
func Repeat(s Signal, n int) Signal {
	if n <= 1 {
		return slices.Clone(s)
	}
	out := make(Signal, 0, len(s)*n)
	for range n {
		out = append(out, s...)
	}
	return out
}
