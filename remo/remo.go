// Package remo converts raw signals to and from the IR signal JSON accepted by
// Nature Remo devices and the Nature Remo cloud API.
package remo

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/tenntenn/natureremo"

	"github.com/eivy/irgen/raw"
)

const (
	// FormatMicroseconds is the only data format Nature Remo defines.
	FormatMicroseconds = "us"
	// DefaultFreq is the carrier frequency in kHz of most consumer remotes.
	DefaultFreq = 38
)

type number interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

func setData[T number](dst *[]T, s raw.Signal) {
	data := make([]T, len(s))
	for i, d := range s {
		data[i] = T(math.Round(math.Abs(d)))
	}
	*dst = data
}

func setFreq[T number](dst *T, freq int) {
	*dst = T(freq)
}

func durations[T number](data []T) raw.Signal {
	s := make(raw.Signal, len(data))
	for i, v := range data {
		d := float64(v)
		if i%2 == 1 {
			d = -d
		}
		s[i] = d
	}
	return s
}

// Encode returns s as an IR signal with the given carrier frequency in kHz.
// Leading silence is dropped and durations of the same sign are merged.
func Encode(s raw.Signal, freq int) *natureremo.IRSignal {
	if freq <= 0 {
		freq = DefaultFreq
	}
	sig := &natureremo.IRSignal{Format: FormatMicroseconds}
	setFreq(&sig.Freq, freq)
	setData(&sig.Data, slices.Collect(raw.Simplify(s.Values())))
	return sig
}

// Decode returns the raw signal of sig. Data entries alternate between mark
// and space, starting with a mark.
func Decode(sig *natureremo.IRSignal) (raw.Signal, error) {
	if sig == nil {
		return nil, &raw.FormatError{Format: "remo", Reason: "missing signal"}
	}
	if sig.Format != "" && sig.Format != FormatMicroseconds {
		return nil, &raw.FormatError{Format: "remo", Reason: fmt.Sprintf("unsupported data format %q", sig.Format)}
	}
	return durations(sig.Data), nil
}

// Marshal encodes s as Nature Remo JSON.
func Marshal(s raw.Signal, freq int) ([]byte, error) {
	data, err := json.Marshal(Encode(s, freq))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal remo signal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes Nature Remo JSON.
func Unmarshal(data []byte) (raw.Signal, error) {
	var sig natureremo.IRSignal
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, &raw.FormatError{Format: "remo", Reason: err.Error()}
	}
	return Decode(&sig)
}
