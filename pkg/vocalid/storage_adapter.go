package vocalid

import (
	"encoding/json"
	"fmt"

	"github.com/vocalid/vocalid/pkg/vocalid/spectral"
	"github.com/vocalid/vocalid/pkg/vocalid/storage"
)

// sqliteStore adapts the gorm-backed storage.Store to the SpeakerStore
// interface, converting between domain types and persisted rows.
type sqliteStore struct {
	store *storage.Store
}

func newSQLiteStore(dbPath string) (SpeakerStore, error) {
	st, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{store: st}, nil
}

func (s *sqliteStore) SaveSpeaker(sp KnownSpeaker) (string, error) {
	var profileJSON []byte
	if sp.Profile != nil {
		var err error
		profileJSON, err = json.Marshal(sp.Profile)
		if err != nil {
			return "", fmt.Errorf("encoding profile: %w", err)
		}
	}
	return s.store.Create(sp.Name, storage.EncodeEmbedding(sp.Embedding), profileJSON, sp.TotalDuration)
}

func (s *sqliteStore) GetSpeaker(id string) (*KnownSpeaker, error) {
	row, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return fromRecord(row)
}

func (s *sqliteStore) ListSpeakers() ([]KnownSpeaker, error) {
	rows, err := s.store.List()
	if err != nil {
		return nil, err
	}
	speakers := make([]KnownSpeaker, 0, len(rows))
	for i := range rows {
		sp, err := fromRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, *sp)
	}
	return speakers, nil
}

func (s *sqliteStore) DeleteSpeaker(id string) error {
	return s.store.Delete(id)
}

func (s *sqliteStore) Close() error {
	return s.store.Close()
}

func fromRecord(row *storage.Speaker) (*KnownSpeaker, error) {
	emb, err := storage.DecodeEmbedding(row.Embedding)
	if err != nil {
		return nil, fmt.Errorf("speaker %s: %w", row.ID, err)
	}

	var profile *spectral.VoiceProfile
	if len(row.Profile) > 0 {
		profile = &spectral.VoiceProfile{}
		if err := json.Unmarshal(row.Profile, profile); err != nil {
			return nil, fmt.Errorf("speaker %s: decoding profile: %w", row.ID, err)
		}
	}

	return &KnownSpeaker{
		ID:            row.ID,
		Name:          row.Name,
		Embedding:     emb,
		Profile:       profile,
		TotalDuration: row.TotalDuration,
		CreatedAt:     row.CreatedAt,
	}, nil
}
