package vocalid

import (
	"time"

	"github.com/vocalid/vocalid/pkg/vocalid/diarize"
	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
)

// KnownSpeaker is a persisted speaker identity: a stable ID and name, the
// enrolled L2-normalized embedding, and optionally the statistical voice
// profile captured at enrollment. The matching engine only ever reads these.
type KnownSpeaker struct {
	ID            string
	Name          string
	Embedding     []float32
	Profile       *spectral.VoiceProfile
	TotalDuration float64 // seconds of enrollment audio behind the embedding
	CreatedAt     time.Time
}

// RecordingIdentity is the result of identifying one recording's diarization
// output against the known-speaker library.
type RecordingIdentity struct {
	// Profiles maps each recording-local speaker tag to its aggregated
	// embedding profile.
	Profiles map[string]*diarize.SpeakerProfile

	// Matches maps recording-local tags to known speaker IDs. Tags with no
	// library match under the threshold are absent.
	Matches map[string]string
}
