package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig configures logger construction.
type LoggingConfig struct {
	Level zapcore.Level
	// Development switches to the console encoder with caller and stack
	// information, used for --verbose runs.
	Development bool
}

// NewLogger builds the process logger. Output goes to stderr so command
// results on stdout stay machine readable.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.Level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
