package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vocalid/vocalid/pkg/vocalid/diarize"
	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
	"github.com/vocalid/vocalid/pkg/vocalid/storage"
)

// fileConfig is the optional YAML pipeline configuration. Flags override it.
type fileConfig struct {
	DBPath         string  `yaml:"db_path"`
	SampleRate     int     `yaml:"sample_rate"`
	MatchThreshold float64 `yaml:"match_threshold"`

	VAD struct {
		EnergyThreshold  float64 `yaml:"energy_threshold"`
		MinSpeechFrames  int     `yaml:"min_speech_frames"`
		MinSilenceFrames int     `yaml:"min_silence_frames"`
		HangoverSeconds  float64 `yaml:"hangover_seconds"`
	} `yaml:"vad"`
}

func defaultFileConfig() fileConfig {
	var cfg fileConfig
	cfg.DBPath = storage.DefaultDBFile
	cfg.SampleRate = spectral.DefaultSampleRate
	cfg.MatchThreshold = diarize.DefaultMatchThreshold
	return cfg
}

// loadConfig reads the YAML config at path, or returns defaults when path is
// empty.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// segmentFile is the JSON document produced by the diarization engine for
// one recording: segments plus, optionally, pre-averaged per-speaker
// embeddings ("speaker_db").
type segmentFile struct {
	Segments  []diarize.Segment    `json:"segments"`
	SpeakerDB map[string][]float32 `json:"speaker_db,omitempty"`
}
