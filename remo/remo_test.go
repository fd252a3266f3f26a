package remo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenntenn/natureremo"

	"github.com/eivy/irgen/raw"
)

func TestMarshal(t *testing.T) {
	data, err := Marshal(raw.Signal{-300, 9000, -4500, 562.5, 562.5, -1687.4}, 0)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(38), got["freq"])
	assert.Equal(t, "us", got["format"])
	assert.Equal(t, []any{float64(9000), float64(4500), float64(1125), float64(1687)}, got["data"])
}

func TestRoundTrip(t *testing.T) {
	s := raw.Signal{9000, -4500, 560, -1690, 560, -40000}

	data, err := Marshal(s, 40)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestUnmarshal(t *testing.T) {
	got, err := Unmarshal([]byte(`{"freq":38,"data":[2400,600,1200],"format":"us"}`))
	require.NoError(t, err)
	assert.Equal(t, raw.Signal{2400, -600, 1200}, got)

	// Format is optional.
	got, err = Unmarshal([]byte(`{"freq":38,"data":[2400,600]}`))
	require.NoError(t, err)
	assert.Equal(t, raw.Signal{2400, -600}, got)
}

func TestDecodeErrors(t *testing.T) {
	var formatErr *raw.FormatError

	_, err := Unmarshal([]byte(`{"freq":38,"data":[2400,600],"format":"ms"}`))
	assert.ErrorAs(t, err, &formatErr)

	_, err = Unmarshal([]byte(`{"data":`))
	assert.ErrorAs(t, err, &formatErr)

	_, err = Decode((*natureremo.IRSignal)(nil))
	assert.ErrorAs(t, err, &formatErr)
}
