package raw

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func simplified(s Signal) Signal {
	return slices.Collect(Simplify(s.Values()))
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name   string
		input  Signal
		output Signal
	}{
		{name: "pair", input: Signal{1, -1}, output: Signal{1, -1}},
		{name: "odd", input: Signal{1, -1, 1}, output: Signal{1, -1, 1}},
		{name: "leading space", input: Signal{-2, 1, -1, 1}, output: Signal{1, -1, 1}},
		{name: "runs", input: Signal{1, 2, -1, -1, 0, -1, 3}, output: Signal{3, -3, 3}},
		{name: "zeros", input: Signal{0, 0, 5, 0, -5, 0}, output: Signal{5, -5}},
		{name: "only silence", input: Signal{-1, -2, 0}, output: nil},
		{name: "empty", input: nil, output: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplified(tt.input)
			if diff := cmp.Diff(tt.output, got); diff != "" {
				t.Errorf("Simplify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	inputs := []Signal{
		{-2, 1, -1, 1},
		{1, 1, 1, -1, 0, -3, 2, 0, 0, -1},
		{-5, -5, 0, 0},
		{562.5, -562.5, 562.5, 562.5, -1687.5},
	}

	for _, input := range inputs {
		once := simplified(input)
		assert.Equal(t, once, simplified(once))
	}
}

func TestSimplifyStopsEarly(t *testing.T) {
	var got Signal
	for v := range Simplify(Signal{1, -1, 1, -1}.Values()) {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, Signal{1, -1}, got)
}

func TestPaired(t *testing.T) {
	tests := []struct {
		input  Signal
		output Signal
	}{
		{input: Signal{-1}, output: Signal{0, -1}},
		{input: Signal{0, -1}, output: Signal{0, -1}},
		{input: Signal{0, -1, -1}, output: Signal{0, -1, 0, -1}},
		{input: Signal{0, -1, -1, 1}, output: Signal{0, -1, 0, -1, 1, 0}},
		{input: Signal{1, 1}, output: Signal{1, 0, 1, 0}},
		{input: Signal{1, -1}, output: Signal{1, -1}},
	}

	for _, tt := range tests {
		got := Signal(slices.Collect(Paired(tt.input.Values(), 0)))
		assert.Equal(t, tt.output, got, "Paired(%v)", tt.input)
	}
}

func TestPairedTrailingSilence(t *testing.T) {
	got := Signal(slices.Collect(Paired(Signal{1, -1, 1}.Values(), 100)))
	assert.Equal(t, Signal{1, -1, 1, -100}, got)

	got = Signal(slices.Collect(Paired(Signal{1, -1}.Values(), -100)))
	assert.Equal(t, Signal{1, -1}, got)
}

func TestNormalize(t *testing.T) {
	got := Normalize(Signal{-3, 1, 1, -1, 0, 2}, -7)
	assert.Equal(t, Signal{2, -1, 2, -7}, got)
	assert.Zero(t, len(got)%2)
}

func TestTrim(t *testing.T) {
	assert.Equal(t, Signal{1}, Trim(Signal{1, -1}, Trailing))
	assert.Equal(t, Signal{1, -1, 1}, Trim(Signal{1, -1, 1}, Trailing))
	assert.Equal(t, Signal{1, -1, 1}, Trim(Signal{1, -1, 1, -1, 0, -2}, Trailing))
	assert.Equal(t, Signal{1, -1}, Trim(Signal{-1, 0, 1, -1}, Leading))
	assert.Empty(t, Trim(Signal{-1, 0}, Leading))
	assert.Empty(t, Trim(nil, Trailing))
}

func TestRepeat(t *testing.T) {
	assert.Equal(t, Signal{1, -2, 1, -2, 1, -2}, Repeat(Signal{1, -2}, 3))
	assert.Equal(t, Signal{1, -2}, Repeat(Signal{1, -2}, 1))
	assert.Equal(t, Signal{1, -2}, Repeat(Signal{1, -2}, 0))
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "+562.5 -4500 0 +1", Signal{562.5, -4500, 0, 1}.String())

	s, err := Parse([]string{"+562.5", "-4500", " 0 ", "1"})
	assert.NoError(t, err)
	assert.Equal(t, Signal{562.5, -4500, 0, 1}, s)

	_, err = Parse([]string{"+x"})
	var formatErr *FormatError
	assert.ErrorAs(t, err, &formatErr)
}
