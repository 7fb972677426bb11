// Package logging builds the zap logger used by the jsonprop command.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr. With debug set it logs everything
// at debug level in development format; otherwise only warnings and errors
// are written.
func New(debug bool) (*zap.Logger, error) {
	return NewWithWriter(debug, os.Stderr), nil
}

// NewWithWriter returns a logger like New that writes to w.
func NewWithWriter(debug bool, w io.Writer) *zap.Logger {
	var (
		encConfig zapcore.EncoderConfig
		level     zapcore.Level
		opts      []zap.Option
	)
	if debug {
		encConfig = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
		opts = append(opts, zap.Development(), zap.AddCaller())
	} else {
		encConfig = zap.NewProductionEncoderConfig()
		encConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		level = zapcore.WarnLevel
	}
	encConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encConfig), zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core, opts...)
}
