// Package logging builds the zap logger shared by the command line tool and
// the conversion service.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config configures logging.
type Config struct {
	// Level is the minimum level written.
	Level zapcore.Level `yaml:"level"`
	// Encoding is "console" or "json".
	Encoding string `yaml:"encoding"`
}

// DefaultConfig logs warnings and errors to stderr.
func DefaultConfig() Config {
	return Config{
		Level:    zapcore.WarnLevel,
		Encoding: "console",
	}
}

// Init builds a logger writing to stderr. Console output is colored when
// stderr is a terminal.
func Init(cfg Config) (*zap.SugaredLogger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(cfg.Level)

	var encoderConfig zapcore.EncoderConfig
	switch cfg.Encoding {
	case "", "console":
		cfg.Encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if term.IsTerminal(int(os.Stderr.Fd())) {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	case "json":
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, level, fmt.Errorf("unsupported log encoding %q", cfg.Encoding)
	}

	logger, err := zap.Config{
		Level:            level,
		Encoding:         cfg.Encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}.Build()
	if err != nil {
		return nil, level, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.Sugar(), level, nil
}
