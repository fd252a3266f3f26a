package irgen

import (
	"fmt"
	"strings"

	"github.com/eivy/irgen/protocol"
)

// Output is the representation a conversion produces.
type Output int

const (
	// OutputRaw is signed durations, marks prefixed with "+"
	OutputRaw Output = iota
	// OutputBroadlink is a hex Broadlink packet
	OutputBroadlink
	// OutputBroadlinkBase64 is a base64 Broadlink packet
	OutputBroadlinkBase64
	// OutputBroadlinkHass is Home Assistant switch configuration
	OutputBroadlinkHass
	// OutputPronto is a learned Pronto code
	OutputPronto
	// OutputRemo is Nature Remo JSON
	OutputRemo
	// OutputRC5 decodes RC5 frames
	OutputRC5
	// OutputRC6 decodes RC6 frames
	OutputRC6
)

var outputNames = []string{
	OutputRaw:             "raw",
	OutputBroadlink:       "broadlink",
	OutputBroadlinkBase64: "broadlink_base64",
	OutputBroadlinkHass:   "broadlink_hass",
	OutputPronto:          "pronto",
	OutputRemo:            "remo",
	OutputRC5:             "rc5",
	OutputRC6:             "rc6",
}

func (o Output) String() string {
	if o >= 0 && int(o) < len(outputNames) {
		return outputNames[o]
	}
	return "Unknown"
}

// ParseOutput resolves an output name.
func ParseOutput(name string) (Output, error) {
	for i, n := range outputNames {
		if strings.EqualFold(n, name) {
			return Output(i), nil
		}
	}
	return 0, fmt.Errorf("unsupported output %q, expected one of %s", name, strings.Join(outputNames, ", "))
}

// Decoder returns the protocol an output decodes to, if any.
func (o Output) Decoder() (protocol.Protocol, bool) {
	switch o {
	case OutputRC5:
		return protocol.Protocol{Family: protocol.RC5}, true
	case OutputRC6:
		return protocol.Protocol{Family: protocol.RC6}, true
	default:
		return protocol.Protocol{}, false
	}
}

// Set implements pflag.Value.
func (o *Output) Set(name string) error {
	v, err := ParseOutput(name)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Type implements pflag.Value.
func (o *Output) Type() string {
	return "output"
}

// MarshalText implements encoding.TextMarshaler.
func (o Output) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Output) UnmarshalText(text []byte) error {
	return o.Set(string(text))
}

// MarshalYAML define custom marshaling for Output
func (o Output) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// UnmarshalYAML define custom marshaling for Output
func (o *Output) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux string
	if err := unmarshal(&aux); err != nil {
		return err
	}
	return o.Set(aux)
}

// Source is the kind of data a conversion starts from.
type Source int

const (
	// SourceProtocol is protocol parameters
	SourceProtocol Source = iota
	// SourceRaw is signed durations
	SourceRaw
	// SourceIRDB is a table downloaded from IRDB
	SourceIRDB
	// SourceBroadlink is a hex Broadlink packet
	SourceBroadlink
	// SourceBroadlinkBase64 is a base64 Broadlink packet
	SourceBroadlinkBase64
	// SourcePronto is a learned Pronto code
	SourcePronto
	// SourceRemo is Nature Remo JSON
	SourceRemo
)

var sourceNames = map[Source]string{
	SourceRaw:             "raw",
	SourceIRDB:            "irdb",
	SourceBroadlink:       "broadlink",
	SourceBroadlinkBase64: "broadlink_base64",
	SourcePronto:          "pronto",
	SourceRemo:            "remo",
}

// Input selects what the data of a request holds: either one of the wire
// formats or the parameters of a protocol.
type Input struct {
	Source Source
	// Protocol is set for SourceProtocol.
	Protocol protocol.Protocol
}

func (i Input) String() string {
	if i.Source == SourceProtocol {
		return i.Protocol.String()
	}
	if name, ok := sourceNames[i.Source]; ok {
		return name
	}
	return "Unknown"
}

// InputNames lists every accepted input name.
func InputNames() []string {
	names := protocol.Names()
	for s := SourceRaw; s <= SourceRemo; s++ {
		names = append(names, sourceNames[s])
	}
	return names
}

// ParseInput resolves an input name: a wire format or a protocol name.
func ParseInput(name string) (Input, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for s, n := range sourceNames {
		if n == lower {
			return Input{Source: s}, nil
		}
	}
	p, err := protocol.Parse(lower)
	if err != nil {
		return Input{}, fmt.Errorf("unsupported input %q, expected one of %s", name, strings.Join(InputNames(), ", "))
	}
	return Input{Source: SourceProtocol, Protocol: p}, nil
}

// Set implements pflag.Value.
func (i *Input) Set(name string) error {
	v, err := ParseInput(name)
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Type implements pflag.Value.
func (i *Input) Type() string {
	return "input"
}

// MarshalText implements encoding.TextMarshaler.
func (i Input) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Input) UnmarshalText(text []byte) error {
	return i.Set(string(text))
}

// MarshalYAML define custom marshaling for Input
func (i Input) MarshalYAML() (interface{}, error) {
	return i.String(), nil
}

// UnmarshalYAML define custom marshaling for Input
func (i *Input) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux string
	if err := unmarshal(&aux); err != nil {
		return err
	}
	return i.Set(aux)
}
