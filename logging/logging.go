// Package logging builds the zap logger shared by the keybridge packages.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/keybridge/bridge"
	"github.com/wippyai/keybridge/errors"
	"github.com/wippyai/keybridge/loader"
)

// Config selects level, encoding and destination.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	File   string // empty means stderr
}

// New builds a logger. JSON output uses zap's production encoder settings,
// console output the development ones.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging.level")
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
	case "json":
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	default:
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(cfg.Format).
			Detail("unknown log format %q", cfg.Format).
			Build()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = level > zapcore.DebugLevel

	out := "stderr"
	if cfg.File != "" {
		out = cfg.File
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}

	return zc.Build()
}

// Install routes the bridge and loader package logs through l.
func Install(l *zap.Logger) {
	bridge.SetLogger(l.Named("bridge"))
	loader.SetLogger(l.Named("loader"))
}
