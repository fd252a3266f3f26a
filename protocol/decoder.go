package protocol

import (
	"fmt"
	"io"
	"slices"

	"github.com/eivy/irgen/raw"
)

// gapUnits is the shortest space treated as silence between frames. No space
// inside an RC5 or RC6 frame is longer than three units.
const gapUnits = 4

// Decoder reads consecutive frames of one protocol from a raw signal.
type Decoder struct {
	proto Protocol
	r     tickReader
}

// NewDecoder prepares s for decoding as p. It fails if p has no decoder or
// if a duration inside a frame is off the protocol's timing grid.
func NewDecoder(p Protocol, s raw.Signal) (*Decoder, error) {
	var unit float64
	switch p.Family {
	case RC5:
		unit = rc5Unit
	case RC6:
		unit = rc6Unit
	default:
		return nil, fmt.Errorf("decoding %s is not supported", p)
	}

	ticks, err := raw.BitifyFrames(s, unit, gapUnits)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", p, err)
	}
	return &Decoder{
		proto: p,
		r:     tickReader{proto: p, ticks: ticks},
	}, nil
}

// Next decodes the next frame. It returns io.EOF once only silence is left.
func (d *Decoder) Next() (Params, error) {
	d.r.skipSilence(-1)
	if d.r.done() {
		return Params{}, io.EOF
	}

	switch d.proto.Family {
	case RC5:
		return decodeRC5(&d.r)
	default:
		return decodeRC6(&d.r)
	}
}

// All decodes every remaining frame.
func (d *Decoder) All() ([]Params, error) {
	var frames []Params
	for {
		params, err := d.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, params)
	}
}

// tickReader is a cursor over unit ticks.
type tickReader struct {
	proto Protocol
	ticks []int
	pos   int
}

func (r *tickReader) done() bool {
	return r.pos >= len(r.ticks)
}

// skipSilence consumes up to limit space ticks, or all of them if limit < 0.
func (r *tickReader) skipSilence(limit int) {
	for n := 0; (limit < 0 || n < limit) && !r.done() && r.ticks[r.pos] < 0; n++ {
		r.pos++
	}
}

func (r *tickReader) take(n int) []int {
	end := min(r.pos+n, len(r.ticks))
	ticks := r.ticks[r.pos:end]
	r.pos = end
	return ticks
}

func (r *tickReader) fail(field string, start int, ticks []int) error {
	return &raw.ProtocolDecodeError{
		Protocol: r.proto.String(),
		Field:    field,
		Offset:   start,
		Ticks:    slices.Clone(ticks),
	}
}

// expect consumes ticks that must equal pattern.
func (r *tickReader) expect(field string, pattern ...int) error {
	start := r.pos
	ticks := r.take(len(pattern))
	if !slices.Equal(ticks, pattern) {
		return r.fail(field, start, ticks)
	}
	return nil
}

// bit reads one symbol and returns '1' or '0' for whichever template it
// matches.
func (r *tickReader) bit(field string, one, zero []int) (byte, error) {
	start := r.pos
	ticks := r.take(len(one))
	switch {
	case slices.Equal(ticks, one):
		return '1', nil
	case slices.Equal(ticks, zero):
		return '0', nil
	default:
		return 0, r.fail(field, start, ticks)
	}
}

// bits reads n symbols into a binary digit string.
func (r *tickReader) bits(field string, n int, one, zero []int) (string, error) {
	digits := make([]byte, 0, n)
	for range n {
		b, err := r.bit(field, one, zero)
		if err != nil {
			return "", err
		}
		digits = append(digits, b)
	}
	return string(digits), nil
}
