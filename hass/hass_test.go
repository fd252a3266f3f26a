package hass

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEntityName(t *testing.T) {
	tests := map[string]string{
		"POWER":        "power",
		"VOL+":         "vol_plus",
		"Channel -":    "channel_minus",
		"Input: HDMI1": "input_hdmi1",
		"nec1(4,-1,8)": "nec1(4,_minus_1,8)",
		" Key 1 ":      "key_1",
		"a___b":        "a__b",
	}

	for text, want := range tests {
		assert.Equal(t, want, EntityName(text), text)
	}
}

type switchConfig struct {
	CommandOn    string `yaml:"command_on"`
	FriendlyName string `yaml:"friendlyname"`
}

func decodeDocs(t *testing.T, data []byte) (yaml.Node, []string) {
	t.Helper()
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var switches yaml.Node
	require.NoError(t, dec.Decode(&switches))

	var group struct {
		Entities []string `yaml:"entities"`
	}
	require.NoError(t, dec.Decode(&group))

	var extra yaml.Node
	require.True(t, errors.Is(dec.Decode(&extra), io.EOF))
	return switches, group.Entities
}

func TestRender(t *testing.T) {
	data, err := Render([]Entry{
		{FriendlyName: "VOL+", Command: "JgAaAB0d"},
		{FriendlyName: "POWER", Command: "JgAaAB0e"},
		{FriendlyName: "nec1(4,-1,8)", Command: "JgAaAB0f+/=="},
	})
	require.NoError(t, err)

	switches, entities := decodeDocs(t, data)
	assert.Equal(t, []string{"vol_plus", "power", "nec1(4,_minus_1,8)"}, entities)

	var cfg struct {
		Switches map[string]switchConfig `yaml:"switches"`
	}
	require.NoError(t, switches.Decode(&cfg))
	assert.Equal(t, map[string]switchConfig{
		"vol_plus":           {CommandOn: "JgAaAB0d", FriendlyName: "VOL+"},
		"power":              {CommandOn: "JgAaAB0e", FriendlyName: "POWER"},
		"nec1(4,_minus_1,8)": {CommandOn: "JgAaAB0f+/==", FriendlyName: "nec1(4,-1,8)"},
	}, cfg.Switches)

	// Switches are sorted by entity name.
	root := switches.Content[0]
	require.Equal(t, "switches", root.Content[0].Value)
	keys := root.Content[1].Content
	require.Len(t, keys, 6)
	assert.Equal(t, "nec1(4,_minus_1,8)", keys[0].Value)
	assert.Equal(t, "power", keys[2].Value)
	assert.Equal(t, "vol_plus", keys[4].Value)
}

func TestRenderDuplicate(t *testing.T) {
	data, err := Render([]Entry{
		{FriendlyName: "Power", Command: "AAAA"},
		{FriendlyName: "Mute", Command: "BBBB"},
		{FriendlyName: "POWER", Command: "CCCC"},
	})
	require.NoError(t, err)

	switches, entities := decodeDocs(t, data)
	assert.Equal(t, []string{"power", "mute", "power"}, entities)

	var cfg struct {
		Switches map[string]switchConfig `yaml:"switches"`
	}
	require.NoError(t, switches.Decode(&cfg))
	assert.Equal(t, map[string]switchConfig{
		"mute":  {CommandOn: "BBBB", FriendlyName: "Mute"},
		"power": {CommandOn: "CCCC", FriendlyName: "POWER"},
	}, cfg.Switches)
}
