package irgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/eivy/irgen/irdb"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Input{Source: SourceRaw}, cfg.Convert.Input)
	assert.Equal(t, OutputRaw, cfg.Convert.Output)
	assert.Equal(t, 1, cfg.Convert.Repeats)
	assert.Equal(t, uint16(0x73), cfg.Convert.ProntoBase)
	assert.Equal(t, 38, cfg.Convert.RemoFreq)
	assert.Equal(t, irdb.DefaultBaseURL, cfg.IRDB.BaseURL)
	assert.Equal(t, ":9150", cfg.HTTP.ListenAddr)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Equal(t, zapcore.WarnLevel, cfg.Logging.Level)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")
	path := writeConfig(t, `
logging:
  level: debug
  encoding: json
convert:
  input: necx1
  output: broadlink_hass
  repeats: 3
  pronto_base: 109
irdb:
  timeout: 5s
  max_tries: 2
http:
  listen_addr: 127.0.0.1:8080
mqtt:
  broker: localhost
  prefix: ir
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, "necx1", cfg.Convert.Input.String())
	assert.Equal(t, OutputBroadlinkHass, cfg.Convert.Output)
	assert.Equal(t, 3, cfg.Convert.Repeats)
	assert.Equal(t, uint16(109), cfg.Convert.ProntoBase)
	assert.Equal(t, 38, cfg.Convert.RemoFreq)
	assert.Equal(t, 5*time.Second, cfg.IRDB.Timeout)
	assert.Equal(t, uint(2), cfg.IRDB.MaxTries)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	assert.Equal(t, "localhost", cfg.MQTT.Broker)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, "ir", cfg.MQTT.Prefix)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("MQTT_BROKER", "broker.local")
	t.Setenv("MQTT_PORT", "8883")

	cfg, err := LoadConfig(writeConfig(t, "mqtt:\n  broker: ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "broker.local", cfg.MQTT.Broker)
	assert.Equal(t, 8883, cfg.MQTT.Port)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	for _, text := range []string{
		"convert:\n  output: wav\n",
		"convert:\n  input: sony12\n",
		"convert:\n  repeats: 0\n",
		"convert:\n  remo_freq: -1\n",
		"mqtt:\n  broker: localhost\n  prefix: \"\"\n",
		"logging: [\n",
	} {
		_, err := LoadConfig(writeConfig(t, text))
		assert.Error(t, err, text)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
