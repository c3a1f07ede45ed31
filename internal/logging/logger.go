// Package logging builds the zap logger for a CLI run.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by --log-format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects how much is logged and how.
type Config struct {
	// Verbose enables debug logs of every file mutation and child process.
	Verbose bool

	// Format is console or json. Empty means console.
	Format string

	// Output receives log lines, usually stderr.
	Output io.Writer
}

// New returns a no-op logger unless verbose logging or an explicit format was
// requested. Every line carries the run ID.
func New(cfg Config, runID string) (*zap.Logger, error) {
	if !cfg.Verbose && cfg.Format == "" {
		return zap.NewNop(), nil
	}

	level := zapcore.InfoLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "", FormatConsole:
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format: %s (must be console or json)", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.Output), zap.NewAtomicLevelAt(level))
	return zap.New(core).With(zap.String("run", runID)), nil
}
