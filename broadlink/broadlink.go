// Package broadlink reads and writes the IR payload sent to Broadlink RM
// devices.
//
// A packet is laid out as
//
//	0x26 repeat len(LE16) entries... padding
//
// where every entry is one duration in units of 8192/269 us. Durations that
// do not fit one byte are written as 0x00 followed by a big-endian uint16.
// Marks and spaces alternate, starting with a mark.
package broadlink

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/eivy/irgen/raw"
)

const (
	irTag      = 0x26
	headerSize = 4
	// The device prepends its own 4 byte header and expects the whole frame
	// to be a multiple of 16 bytes.
	blockSize = 16

	escape       = 0x00
	maxMagnitude = 0xFFFF
)

// Trailer is the silence closing every encoded packet, 0x0d05 units.
const Trailer = -101502

// Packet is a decoded Broadlink IR payload.
type Packet struct {
	// Repeat is the number of times the device replays the signal after the
	// first transmission.
	Repeat uint8
	Signal raw.Signal
}

type options struct {
	Log *zap.SugaredLogger
}

func newOptions() *options {
	return &options{
		Log: zap.NewNop().Sugar(),
	}
}

// Option configures Decode.
type Option func(*options)

// WithLog sets the logger warnings are reported to.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

func toMagnitude(d float64) int {
	return int(math.Round(math.Abs(d) * 269 / 8192))
}

func fromMagnitude(m int) float64 {
	return math.Round(float64(m) * 8192 / 269)
}

// Encode serializes a packet. The signal is normalized first: leading silence
// is dropped and trailing silence is replaced by Trailer.
func Encode(p Packet) ([]byte, error) {
	s := raw.Normalize(raw.Trim(p.Signal, raw.Trailing), Trailer)

	payload := make([]byte, 0, len(s)+8)
	for _, d := range s {
		m := toMagnitude(d)
		switch {
		case m > maxMagnitude:
			return nil, fmt.Errorf("failed to encode broadlink packet: %w", &raw.DomainError{
				Field: "broadlink duration",
				Value: int64(m),
				Min:   0,
				Max:   maxMagnitude,
			})
		case m > 0 && m <= 0xFF:
			payload = append(payload, byte(m))
		default:
			// Zero is escaped too, a bare 0x00 would start an escape.
			payload = append(payload, escape)
			payload = binary.BigEndian.AppendUint16(payload, uint16(m))
		}
	}
	if len(payload) > maxMagnitude {
		return nil, &raw.FormatError{Format: "broadlink", Reason: fmt.Sprintf("payload of %d bytes is too long", len(payload))}
	}

	out := make([]byte, 0, headerSize+len(payload)+blockSize)
	out = append(out, irTag, p.Repeat)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(payload)))
	out = append(out, payload...)
	for (len(out)+headerSize)%blockSize != 0 {
		out = append(out, 0)
	}
	return out, nil
}

// Decode parses a packet. Non-zero bytes after the declared payload length
// are reported as a warning and otherwise ignored.
func Decode(data []byte, opts ...Option) (Packet, error) {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	if len(data) < headerSize {
		return Packet{}, &raw.FormatError{Format: "broadlink", Reason: fmt.Sprintf("packet of %d bytes is shorter than the header", len(data))}
	}
	if data[0] != irTag {
		return Packet{}, &raw.FormatError{Format: "broadlink", Reason: fmt.Sprintf("unexpected tag 0x%02x, want 0x%02x", data[0], irTag)}
	}
	length := int(binary.LittleEndian.Uint16(data[2:4]))
	end := headerSize + length
	if end > len(data) {
		return Packet{}, &raw.FormatError{Format: "broadlink", Reason: fmt.Sprintf("declared length %d exceeds the %d bytes available", length, len(data)-headerSize)}
	}

	payload := data[headerSize:end]
	s := make(raw.Signal, 0, len(payload))
	for i := 0; i < len(payload); i++ {
		m := int(payload[i])
		if m == escape {
			if i+2 >= len(payload) {
				return Packet{}, &raw.FormatError{Format: "broadlink", Reason: fmt.Sprintf("truncated escape at offset %d", headerSize+i)}
			}
			m = int(binary.BigEndian.Uint16(payload[i+1 : i+3]))
			i += 2
		}
		d := fromMagnitude(m)
		if len(s)%2 == 1 {
			d = -d
		}
		s = append(s, d)
	}

	if padding := data[end:]; slices.ContainsFunc(padding, func(b byte) bool { return b != 0 }) {
		o.Log.Warnw("non-zero bytes after broadlink payload",
			"offset", end,
			"padding", hex.EncodeToString(padding),
		)
	}

	return Packet{Repeat: data[1], Signal: s}, nil
}

// EncodeHex returns the packet as lowercase hex, the form used by the
// python-broadlink tools.
func EncodeHex(p Packet) (string, error) {
	data, err := Encode(p)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// DecodeHex parses a hex encoded packet. Whitespace is ignored.
func DecodeHex(text string, opts ...Option) (Packet, error) {
	data, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return Packet{}, &raw.FormatError{Format: "broadlink hex", Reason: err.Error()}
	}
	return Decode(data, opts...)
}

// EncodeBase64 returns the packet in standard base64, the form used by Home
// Assistant.
func EncodeBase64(p Packet) (string, error) {
	data, err := Encode(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeBase64 parses a base64 encoded packet.
func DecodeBase64(text string, opts ...Option) (Packet, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return Packet{}, &raw.FormatError{Format: "broadlink base64", Reason: err.Error()}
	}
	return Decode(data, opts...)
}
