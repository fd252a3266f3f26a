// Package pronto converts raw signals to and from learned Pronto hex codes.
//
// A learned code is
//
//	0000 base once repeat pairs...
//
// where base divides the Pronto reference clock into the carrier frequency
// and every pair value counts carrier cycles.
package pronto

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/eivy/irgen/raw"
)

const (
	// clock is the period of the Pronto reference oscillator in us.
	clock = 0.241246
	// DefaultFreq is the carrier frequency in MHz used when neither a base nor
	// a frequency is given, 25 cycles per ms.
	DefaultFreq = 0.040

	learned = 0x0000
)

// Code is a decoded learned Pronto code.
type Code struct {
	Base uint16
	// Once is sent a single time, Repeat while the button is held.
	Once   raw.Signal
	Repeat raw.Signal
}

// Freq returns the carrier frequency in MHz.
func (c Code) Freq() float64 {
	return 1 / (float64(c.Base) * clock)
}

// Signal returns the once sequence followed by the repeat sequence.
func (c Code) Signal() raw.Signal {
	return slices.Concat(c.Once, c.Repeat)
}

// Decode reads a learned code.
func Decode(values []uint16) (Code, error) {
	if len(values) < 4 {
		return Code{}, &raw.FormatError{Format: "pronto", Reason: fmt.Sprintf("need at least 4 values, got %d", len(values))}
	}
	if values[0] != learned {
		return Code{}, &raw.FormatError{Format: "pronto", Reason: fmt.Sprintf("unsupported code type %04x", values[0])}
	}
	if values[1] == 0 {
		return Code{}, &raw.FormatError{Format: "pronto", Reason: "zero frequency base"}
	}

	c := Code{Base: values[1]}
	once, repeat := int(values[2]), int(values[3])
	if want := 4 + 2*(once+repeat); len(values) != want {
		return Code{}, &raw.FormatError{Format: "pronto", Reason: fmt.Sprintf("%d pairs need %d values, got %d", once+repeat, want, len(values))}
	}

	freq := c.Freq()
	pairs := values[4:]
	c.Once = durations(pairs[:2*once], freq)
	c.Repeat = durations(pairs[2*once:], freq)
	return c, nil
}

func durations(pairs []uint16, freq float64) raw.Signal {
	s := make(raw.Signal, len(pairs))
	for i, v := range pairs {
		d := math.Round(float64(v)/freq*10) / 10
		if i%2 == 1 {
			d = -d
		}
		s[i] = d
	}
	return s
}

// Options select the carrier frequency of an encoded code. Base takes
// precedence over Freq; with neither set DefaultFreq is used.
type Options struct {
	Base uint16
	// Freq is in MHz.
	Freq float64
}

func (o Options) resolve() (base uint16, freq float64, err error) {
	switch {
	case o.Base != 0:
		return o.Base, 1 / (float64(o.Base) * clock), nil
	case o.Freq == 0:
		o.Freq = DefaultFreq
	case o.Freq < 0:
		return 0, 0, fmt.Errorf("invalid pronto frequency %g", o.Freq)
	}
	b := int(1 / (o.Freq * clock))
	if err := checkValue("pronto base", b); err != nil {
		return 0, 0, err
	}
	return uint16(b), o.Freq, nil
}

// Encode builds a learned code from a once and a repeat sequence. Both are
// simplified and paired first; a sequence ending on a mark gets a zero space.
func Encode(once, repeat raw.Signal, opts Options) ([]uint16, error) {
	base, freq, err := opts.resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to encode pronto code: %w", err)
	}

	onceSeq := slices.Collect(paired(once))
	repeatSeq := slices.Collect(paired(repeat))
	if err := checkValue("pronto pair count", len(onceSeq)/2); err != nil {
		return nil, err
	}
	if err := checkValue("pronto pair count", len(repeatSeq)/2); err != nil {
		return nil, err
	}

	out := make([]uint16, 0, 4+len(onceSeq)+len(repeatSeq))
	out = append(out, learned, base, uint16(len(onceSeq)/2), uint16(len(repeatSeq)/2))
	for _, d := range slices.Concat(onceSeq, repeatSeq) {
		// Partial carrier cycles are dropped.
		n := int(math.Abs(d) * freq)
		if err := checkValue("pronto duration", n); err != nil {
			return nil, fmt.Errorf("failed to encode pronto code: %w", err)
		}
		out = append(out, uint16(n))
	}
	return out, nil
}

func paired(s raw.Signal) iter.Seq[float64] {
	return raw.Paired(raw.Simplify(s.Values()), 0)
}

func checkValue(field string, v int) error {
	if v < 0 || v > math.MaxUint16 {
		return &raw.DomainError{Field: field, Value: int64(v), Min: 0, Max: math.MaxUint16}
	}
	return nil
}

// Parse reads whitespace separated hex values.
func Parse(text string) ([]uint16, error) {
	fields := strings.Fields(text)
	values := make([]uint16, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 16)
		if err != nil {
			return nil, &raw.FormatError{Format: "pronto", Reason: fmt.Sprintf("value %d: %v", i, err)}
		}
		values[i] = uint16(v)
	}
	return values, nil
}

// Format writes values as space separated 4 digit lowercase hex.
func Format(values []uint16) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = fmt.Sprintf("%04x", v)
	}
	return strings.Join(fields, " ")
}
