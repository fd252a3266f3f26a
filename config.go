package irgen

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eivy/irgen/irdb"
	"github.com/eivy/irgen/logging"
	"github.com/eivy/irgen/metrics"
	"github.com/eivy/irgen/mqtt"
	"github.com/eivy/irgen/remo"
)

// Config is configuration
type Config struct {
	Logging logging.Config `yaml:"logging"`
	// Convert holds the defaults of command line conversions.
	Convert ConvertConfig `yaml:"convert"`
	IRDB    IRDBConfig    `yaml:"irdb"`
	// HTTP configures the listener of the conversion service.
	HTTP metrics.Config `yaml:"http"`
	MQTT mqtt.Config    `yaml:"mqtt"`
}

// ConvertConfig sets conversion defaults.
type ConvertConfig struct {
	Input   Input  `yaml:"input"`
	Output  Output `yaml:"output"`
	Repeats int    `yaml:"repeats"`
	// ProntoBase is the frequency base of generated Pronto codes.
	ProntoBase uint16 `yaml:"pronto_base"`
	// RemoFreq is the carrier frequency in kHz of generated Nature Remo
	// signals.
	RemoFreq int `yaml:"remo_freq"`
}

// IRDBConfig configures downloads from IRDB.
type IRDBConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxTries uint          `yaml:"max_tries"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Convert: ConvertConfig{
			Input:      Input{Source: SourceRaw},
			Output:     OutputRaw,
			Repeats:    1,
			ProntoBase: 0x73,
			RemoFreq:   remo.DefaultFreq,
		},
		IRDB: IRDBConfig{
			BaseURL:  irdb.DefaultBaseURL,
			Timeout:  30 * time.Second,
			MaxTries: 5,
		},
		HTTP: metrics.DefaultConfig(),
		MQTT: mqtt.DefaultConfig(),
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig. An empty path
// yields the defaults. MQTT settings are then overridden from the
// environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("failed to deserialize config: %w", err)
		}
	}
	if err := cfg.MQTT.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Convert.Repeats < 1 {
		return fmt.Errorf("convert.repeats must be at least 1, got %d", c.Convert.Repeats)
	}
	if c.Convert.RemoFreq <= 0 {
		return fmt.Errorf("convert.remo_freq must be positive, got %d", c.Convert.RemoFreq)
	}
	if c.MQTT.Enabled() && c.MQTT.Prefix == "" {
		return fmt.Errorf("mqtt.prefix must not be empty")
	}
	return nil
}
