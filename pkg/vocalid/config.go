package vocalid

import (
	"github.com/vocalid/vocalid/pkg/vocalid/diarize"
	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
	"github.com/vocalid/vocalid/pkg/vocalid/storage"
	"github.com/vocalid/vocalid/pkg/vocalid/vad"
)

// Config carries the service dependencies and tunables. Use the With*
// options with NewService rather than constructing it directly.
type Config struct {
	DBPath         string
	SampleRate     int
	MatchThreshold float64
	VAD            vad.Config
	Logger         Logger
	Store          SpeakerStore
	Analyzer       *spectral.Analyzer
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithMatchThreshold(threshold float64) Option {
	return func(c *Config) {
		c.MatchThreshold = threshold
	}
}

func WithVAD(cfg vad.Config) Option {
	return func(c *Config) {
		c.VAD = cfg
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStore(store SpeakerStore) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// WithAnalyzer injects a frontend built with non-default geometry, e.g. for
// tests that shrink the frame size.
func WithAnalyzer(a *spectral.Analyzer) Option {
	return func(c *Config) {
		c.Analyzer = a
		c.SampleRate = a.Params().SampleRate
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:         storage.DefaultDBFile,
		SampleRate:     spectral.DefaultSampleRate,
		MatchThreshold: diarize.DefaultMatchThreshold,
	}
}
