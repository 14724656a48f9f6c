// Package vocalid is the library facade over the voice-fingerprinting core:
// spectral feature extraction, voice activity detection, profile aggregation,
// and diarization-based speaker matching against a persisted speaker library.
package vocalid

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vocalid/vocalid/pkg/logger"
	"github.com/vocalid/vocalid/pkg/vocalid/diarize"
	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
	"github.com/vocalid/vocalid/pkg/vocalid/vad"
)

var (
	// ErrBusy is returned when an enrollment is already in progress.
	ErrBusy = errors.New("enrollment already in progress")

	// ErrSampleRate is returned when input audio does not match the
	// configured pipeline rate. Resampling happens upstream.
	ErrSampleRate = errors.New("sample rate does not match configured rate")
)

// voiceService is the default implementation of the Service interface.
type voiceService struct {
	store    SpeakerStore
	log      Logger
	config   *Config
	analyzer *spectral.Analyzer

	enrolling atomic.Bool
}

// NewService assembles a Service from the options. When no store is given a
// sqlite-backed library is opened at Config.DBPath; when no analyzer is
// given the default 16 kHz frontend geometry is used.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	analyzer := cfg.Analyzer
	if analyzer == nil {
		params := spectral.DefaultParams()
		params.SampleRate = cfg.SampleRate
		bank, err := spectral.NewFilterBank(params)
		if err != nil {
			return nil, fmt.Errorf("building filter bank: %w", err)
		}
		analyzer = spectral.NewAnalyzer(bank)
	}

	store := cfg.Store
	if store == nil {
		var err error
		store, err = newSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening speaker store: %w", err)
		}
	}

	return &voiceService{
		store:    store,
		log:      cfg.Logger,
		config:   cfg,
		analyzer: analyzer,
	}, nil
}

func (s *voiceService) ExtractProfile(ctx context.Context, samples []float64, sampleRate int) (*spectral.VoiceProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sampleRate != s.analyzer.Params().SampleRate {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSampleRate, sampleRate, s.analyzer.Params().SampleRate)
	}

	profile, err := s.analyzer.ExtractProfile(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	if profile.IsEmpty() {
		s.log.Debugf("buffer of %d samples too short for analysis, returning empty profile", len(samples))
	}
	return profile, nil
}

func (s *voiceService) CompareProfiles(a, b *spectral.VoiceProfile) float64 {
	return a.Similarity(b)
}

func (s *voiceService) SpeechRatio(samples []float64, sampleRate int) (float64, error) {
	params := s.analyzer.Params()
	if sampleRate != params.SampleRate {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrSampleRate, sampleRate, params.SampleRate)
	}

	energies := s.analyzer.FrameEnergies(samples)
	if len(energies) == 0 {
		return 0, nil
	}

	detector := vad.New(s.config.VAD)
	frameSeconds := float64(params.HopSize) / float64(params.SampleRate)

	speech := 0
	for i, e := range energies {
		if detector.Push(e, float64(i)*frameSeconds) {
			speech++
		}
	}
	return float64(speech) / float64(len(energies)), nil
}

func (s *voiceService) EnrollSpeaker(ctx context.Context, name string, profiles []*spectral.VoiceProfile, embedding []float32) (string, error) {
	if !s.enrolling.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.enrolling.Store(false)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.New("speaker name is required")
	}
	if len(embedding) != diarize.EmbeddingDim {
		return "", fmt.Errorf("embedding must have %d dimensions, got %d", diarize.EmbeddingDim, len(embedding))
	}
	normalized := diarize.Normalize(embedding)
	if normalized == nil {
		return "", errors.New("embedding has zero norm")
	}

	profile := spectral.AverageProfiles(profiles)
	if profile != nil && profile.IsEmpty() {
		s.log.Warnf("enrollment for %q carries an empty voice profile", name)
	}

	id, err := s.store.SaveSpeaker(KnownSpeaker{
		Name:      name,
		Embedding: normalized,
		Profile:   profile,
	})
	if err != nil {
		return "", fmt.Errorf("saving speaker: %w", err)
	}

	s.log.Infof("enrolled speaker %q from %d profile(s), id=%s", name, len(profiles), id)
	return id, nil
}

func (s *voiceService) IdentifyRecording(ctx context.Context, segments []diarize.Segment, preAveraged map[string][]float32) (*RecordingIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	profiles := diarize.BuildSpeakerProfiles(segments, preAveraged)
	s.log.Infof("aggregated %d speaker profile(s) from %d segment(s)", len(profiles), len(segments))

	speakers, err := s.store.ListSpeakers()
	if err != nil {
		return nil, fmt.Errorf("loading speaker library: %w", err)
	}

	known := make([]diarize.KnownProfile, 0, len(speakers))
	for _, sp := range speakers {
		known = append(known, diarize.KnownProfile{ID: sp.ID, Embedding: sp.Embedding})
	}

	matches := diarize.MatchAllSpeakers(profiles, known, s.config.MatchThreshold)
	s.log.Infof("matched %d/%d recording speaker(s) against %d known", len(matches), len(profiles), len(known))

	return &RecordingIdentity{Profiles: profiles, Matches: matches}, nil
}

func (s *voiceService) AssignSegments(ctx context.Context, segments []diarize.Segment, points []diarize.Point) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeline := diarize.NewTimeline(segments)
	assigned := timeline.AssignPoints(points)
	if len(assigned) < len(points) {
		s.log.Debugf("%d/%d point(s) unresolved (no diarization segments)", len(points)-len(assigned), len(points))
	}
	return assigned, nil
}

func (s *voiceService) ListSpeakers() ([]KnownSpeaker, error) {
	return s.store.ListSpeakers()
}

func (s *voiceService) DeleteSpeaker(id string) error {
	return s.store.DeleteSpeaker(id)
}

func (s *voiceService) Close() error {
	return s.store.Close()
}
