// Package protocol converts between IR protocol parameters and raw signals.
package protocol

import (
	"fmt"
	"strings"

	"github.com/eivy/irgen/raw"
)

// Family is an IR protocol family.
type Family int

const (
	// NEC1 is NEC with a 9ms leader.
	NEC1 Family = iota
	// NEC2 is NEC with a 4.5ms leader.
	NEC2
	// NECX1 is extended NEC with a 9ms leader.
	NECX1
	// NECX2 is extended NEC with a 4.5ms leader.
	NECX2
	// RC5 is Philips RC5.
	RC5
	// RC6 is Philips RC6.
	RC6
	// RCA38 is RCA with a 38kHz carrier.
	RCA38
)

var familyNames = map[Family]string{
	NEC1:  "nec1",
	NEC2:  "nec2",
	NECX1: "necx1",
	NECX2: "necx2",
	RC5:   "rc5",
	RC6:   "rc6",
	RCA38: "rca38",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "Unknown"
}

// IsNEC reports whether f belongs to the NEC family.
func (f Family) IsNEC() bool {
	return f >= NEC1 && f <= NECX2
}

// Suffix selects the fourth byte of a NEC frame.
type Suffix int

const (
	// SuffixNone sends the inverted function.
	SuffixNone Suffix = iota
	// SuffixY1 is Yamaha variant 1, function ^ 0x7F.
	SuffixY1
	// SuffixY2 is Yamaha variant 2, function ^ 0xFE.
	SuffixY2
	// SuffixY3 is Yamaha variant 3, function ^ 0x7E.
	SuffixY3
	// SuffixF16 sends the high byte of a 16-bit function.
	SuffixF16
)

var suffixNames = map[Suffix]string{
	SuffixNone: "",
	SuffixY1:   "y1",
	SuffixY2:   "y2",
	SuffixY3:   "y3",
	SuffixF16:  "f16",
}

func (s Suffix) String() string {
	return suffixNames[s]
}

// Protocol is a protocol variant: a family plus, for NEC, a suffix.
type Protocol struct {
	Family Family
	Suffix Suffix
}

func (p Protocol) String() string {
	if p.Suffix == SuffixNone {
		return p.Family.String()
	}
	return p.Family.String() + "-" + p.Suffix.String()
}

// Parse resolves a protocol name such as "nec1", "NECx2-y1" or "rc6".
func Parse(name string) (Protocol, error) {
	base, suffix, hasSuffix := strings.Cut(strings.ToLower(strings.TrimSpace(name)), "-")

	var p Protocol
	found := false
	for f, n := range familyNames {
		if n == base {
			p.Family, found = f, true
			break
		}
	}
	if !found {
		return Protocol{}, fmt.Errorf("unsupported protocol %q", name)
	}
	if !hasSuffix {
		return p, nil
	}
	if !p.Family.IsNEC() {
		return Protocol{}, fmt.Errorf("protocol %q does not take a suffix", name)
	}
	for s, n := range suffixNames {
		if s != SuffixNone && n == suffix {
			p.Suffix = s
			return p, nil
		}
	}
	return Protocol{}, fmt.Errorf("unsupported protocol suffix %q", name)
}

// Names returns every protocol name Parse accepts, NEC variants first.
func Names() []string {
	names := make([]string, 0, 24)
	for _, f := range []Family{NEC1, NEC2, NECX1, NECX2} {
		for _, s := range []Suffix{SuffixNone, SuffixY1, SuffixY2, SuffixY3, SuffixF16} {
			names = append(names, Protocol{Family: f, Suffix: s}.String())
		}
	}
	return append(names, RC5.String(), RC6.String(), RCA38.String())
}

// Params are the protocol fields of one IR command. Fields a protocol does
// not use are ignored.
type Params struct {
	Device int `json:"device"`
	// Subdevice below zero means the NEC default: the inverted device.
	Subdevice int `json:"subdevice"`
	Function  int `json:"function"`
	Toggle    int `json:"toggle"`
	Mode      int `json:"mode"`
}

// ParseParams reads positional arguments the way the command line takes them:
//
//	nec*   device subdevice function
//	rc5    device function [toggle]
//	rc6    device function [toggle [mode]]
//	rca38  device function
func ParseParams(p Protocol, args []int) (Params, error) {
	var minArgs, maxArgs int
	switch {
	case p.Family.IsNEC():
		minArgs, maxArgs = 3, 3
	case p.Family == RC5:
		minArgs, maxArgs = 2, 3
	case p.Family == RC6:
		minArgs, maxArgs = 2, 4
	default:
		minArgs, maxArgs = 2, 2
	}
	if len(args) < minArgs || len(args) > maxArgs {
		return Params{}, fmt.Errorf("%s takes %d to %d arguments, got %d", p, minArgs, maxArgs, len(args))
	}

	if p.Family.IsNEC() {
		return Params{Device: args[0], Subdevice: args[1], Function: args[2]}, nil
	}

	params := Params{Device: args[0], Subdevice: -1, Function: args[1]}
	if len(args) > 2 {
		params.Toggle = args[2]
	}
	if len(args) > 3 {
		params.Mode = args[3]
	}
	return params, nil
}

var encoders = map[Family]func(Protocol, Params) (raw.Signal, error){
	NEC1:  encodeNEC,
	NEC2:  encodeNEC,
	NECX1: encodeNEC,
	NECX2: encodeNEC,
	RC5:   func(_ Protocol, params Params) (raw.Signal, error) { return encodeRC5(params) },
	RC6:   func(_ Protocol, params Params) (raw.Signal, error) { return encodeRC6(params) },
	RCA38: func(_ Protocol, params Params) (raw.Signal, error) { return encodeRCA38(params) },
}

// Encode returns the raw signal of one frame. The signal is not normalized.
func Encode(p Protocol, params Params) (raw.Signal, error) {
	encode, ok := encoders[p.Family]
	if !ok {
		return nil, fmt.Errorf("unsupported protocol %q", p)
	}
	s, err := encode(p, params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", p, err)
	}
	return s, nil
}

// CanDecode reports whether signals of p can be decoded to parameters.
func (p Protocol) CanDecode() bool {
	return p.Family == RC5 || p.Family == RC6
}

// Decode returns the parameters of the first frame in s.
func Decode(p Protocol, s raw.Signal) (Params, error) {
	d, err := NewDecoder(p, s)
	if err != nil {
		return Params{}, err
	}
	return d.Next()
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &raw.DomainError{Field: field, Value: int64(v), Min: int64(lo), Max: int64(hi)}
	}
	return nil
}
