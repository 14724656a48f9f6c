package vocalid

import (
	"context"

	"github.com/vocalid/vocalid/pkg/vocalid/diarize"
	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
)

// Service is the public surface of the voice-fingerprinting core.
type Service interface {
	// ExtractProfile runs the spectral frontend over a mono sample buffer.
	// Buffers shorter than one frame yield the empty profile, not an error.
	ExtractProfile(ctx context.Context, samples []float64, sampleRate int) (*spectral.VoiceProfile, error)

	// CompareProfiles scores the similarity of two voice profiles in [~0, 1].
	CompareProfiles(a, b *spectral.VoiceProfile) float64

	// SpeechRatio reports the fraction of frames classified as speech by a
	// fresh voice activity detector.
	SpeechRatio(samples []float64, sampleRate int) (float64, error)

	// EnrollSpeaker averages the enrollment profiles, normalizes the
	// embedding, and persists a KnownSpeaker. Returns ErrBusy when another
	// enrollment is already in flight.
	EnrollSpeaker(ctx context.Context, name string, profiles []*spectral.VoiceProfile, embedding []float32) (string, error)

	// IdentifyRecording aggregates per-speaker embedding profiles from one
	// recording's diarization segments and matches them against the stored
	// speaker library.
	IdentifyRecording(ctx context.Context, segments []diarize.Segment, preAveraged map[string][]float32) (*RecordingIdentity, error)

	// AssignSegments attributes transcript points to diarization speaker
	// tags using carry-forward resolution.
	AssignSegments(ctx context.Context, segments []diarize.Segment, points []diarize.Point) (map[string]string, error)

	ListSpeakers() ([]KnownSpeaker, error)
	DeleteSpeaker(id string) error
	Close() error
}

// SpeakerStore persists the known-speaker library. Implementations must be
// safe for concurrent readers.
type SpeakerStore interface {
	SaveSpeaker(sp KnownSpeaker) (string, error)
	GetSpeaker(id string) (*KnownSpeaker, error)
	ListSpeakers() ([]KnownSpeaker, error)
	DeleteSpeaker(id string) error
	Close() error
}

// Logger is the logging surface the service consumes. *zap.SugaredLogger
// satisfies it directly.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
