package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure the process logger.
type Options struct {
	Env     string // APP_ENV
	Level   string // LOG_LEVEL override, empty keeps the environment default
	Service string
	Version string
}

// New builds the process logger. Production writes unsampled JSON with
// ISO8601 timestamps; the other environments use the colored console.
// Service and version are stamped on every line.
func New(o Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch o.Env {
	case "production":
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "development", "local", "staging", "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("logger: unknown APP_ENV %q", o.Env)
	}

	if o.Level != "" {
		lvl, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("logger: LOG_LEVEL %q: %w", o.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	var fields []zap.Field
	if o.Service != "" {
		fields = append(fields, zap.String("service", o.Service))
	}
	if o.Version != "" {
		fields = append(fields, zap.String("version", o.Version))
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel), zap.Fields(fields...))
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return l, nil
}
