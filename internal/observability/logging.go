// Package observability provides structured logging for the world server.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lorencia/mmoserver/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
// Timestamps are ISO8601 and the "server" field tags every entry so mixed
// log streams stay attributable.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.With(zap.String("server", "world")), nil
}

// PlayerField tags a log entry with a player instance id.
func PlayerField(id string) zap.Field {
	return zap.String("player_id", id)
}

// MonsterField tags a log entry with a monster instance id.
func MonsterField(id string) zap.Field {
	return zap.String("monster_id", id)
}

// ZoneField tags a log entry with a zone name.
func ZoneField(name string) zap.Field {
	return zap.String("zone", name)
}
