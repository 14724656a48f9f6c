// Package logger provides the process-wide logger used by the vocalid
// packages and the CLI. It wraps zap's sugared logger so callers get the
// familiar Infof/Warnf/Errorf/Debugf surface.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level      string // debug, info, warn, error
	Colorize   bool
	ShowCaller bool
	TimeFormat string
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Colorize:   true,
		ShowCaller: false,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

var (
	defaultLogger *zap.SugaredLogger
	once          sync.Once
)

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a console logger from cfg.
func New(cfg Config) *zap.SugaredLogger {
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "2006-01-02 15:04:05"
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	if cfg.Colorize {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if !cfg.ShowCaller {
		encCfg.CallerKey = zapcore.OmitKey
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		parseLevel(cfg.Level),
	)
	return zap.New(core).Sugar()
}

// GetLogger returns the shared default logger. The level can be overridden
// with the VOCALID_LOG_LEVEL environment variable.
func GetLogger() *zap.SugaredLogger {
	once.Do(func() {
		cfg := DefaultConfig()
		if envLevel := os.Getenv("VOCALID_LOG_LEVEL"); envLevel != "" {
			cfg.Level = envLevel
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}
