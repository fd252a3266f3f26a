package irgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/eivy/irgen/protocol"
)

func TestParseOutput(t *testing.T) {
	for i, name := range outputNames {
		o, err := ParseOutput(name)
		require.NoError(t, err)
		assert.Equal(t, Output(i), o)
		assert.Equal(t, name, o.String())
	}

	o, err := ParseOutput("Broadlink_HASS")
	require.NoError(t, err)
	assert.Equal(t, OutputBroadlinkHass, o)

	_, err = ParseOutput("lirc")
	assert.ErrorContains(t, err, "expected one of raw, broadlink")
	assert.Equal(t, "Unknown", Output(42).String())
}

func TestParseInput(t *testing.T) {
	tests := map[string]Input{
		"raw":              {Source: SourceRaw},
		"IRDB":             {Source: SourceIRDB},
		"broadlink_base64": {Source: SourceBroadlinkBase64},
		"pronto":           {Source: SourcePronto},
		"remo":             {Source: SourceRemo},
		"necx2-f16":        {Source: SourceProtocol, Protocol: protocol.Protocol{Family: protocol.NECX2, Suffix: protocol.SuffixF16}},
		"RC6":              {Source: SourceProtocol, Protocol: protocol.Protocol{Family: protocol.RC6}},
	}
	for name, want := range tests {
		got, err := ParseInput(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseInput("sony12")
	assert.Error(t, err)
}

func TestInputNames(t *testing.T) {
	names := InputNames()
	assert.Len(t, names, len(protocol.Names())+6)
	for _, name := range names {
		in, err := ParseInput(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, in.String())
	}
}

func TestKindText(t *testing.T) {
	var req struct {
		Input  Input  `json:"input"`
		Output Output `json:"output"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"input":"nec1-y1","output":"pronto"}`), &req))
	assert.Equal(t, "nec1-y1", req.Input.String())
	assert.Equal(t, OutputPronto, req.Output)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"input":"nec1-y1","output":"pronto"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"output":"wav"}`), &req))
}

func TestKindYAML(t *testing.T) {
	cfg := ConvertConfig{
		Input:  Input{Source: SourceBroadlink},
		Output: OutputRC5,
	}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "input: broadlink\n")
	assert.Contains(t, string(data), "output: rc5\n")

	var got ConvertConfig
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, cfg, got)

	assert.Error(t, yaml.Unmarshal([]byte("output: wav\n"), &got))
	assert.Error(t, yaml.Unmarshal([]byte("input: [1]\n"), &got))
}

func TestFlagValues(t *testing.T) {
	var in Input
	require.NoError(t, in.Set("rc5"))
	assert.Equal(t, "rc5", in.String())
	assert.Equal(t, "input", in.Type())

	var out Output
	require.NoError(t, out.Set("remo"))
	assert.Equal(t, OutputRemo, out)
	assert.Equal(t, "output", out.Type())
	assert.Error(t, out.Set(""))
}
