// Package storage persists the known-speaker library: one row per enrolled
// speaker holding the L2-normalized embedding and, optionally, a serialized
// voice profile. The core matching packages never touch it; they are handed
// read-only snapshots read from here.
package storage

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "vocalid.sqlite3"

var errStoreNil = errors.New("store is nil")

// Speaker is the persisted identity row. Embedding is a little-endian
// float32 blob of fixed dimensionality; Profile is an optional JSON
// VoiceProfile captured at enrollment.
type Speaker struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Name          string `gorm:"uniqueIndex:idx_speaker_name"`
	Embedding     []byte `gorm:"not null"`
	Profile       []byte
	TotalDuration float64
	CreatedAt     time.Time
}

// Store wraps the sqlite-backed speaker library.
type Store struct {
	DB *gorm.DB
	db *sql.DB
}

// Open opens (or creates) the library at dbPath and migrates the schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Speaker{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{DB: db, db: sqlDB}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a speaker and returns its generated ID. A speaker with the
// same name is updated in place instead, keeping enrollment idempotent.
func (s *Store) Create(name string, embedding, profile []byte, totalDuration float64) (string, error) {
	if s == nil || s.DB == nil {
		return "", errStoreNil
	}

	var existing Speaker
	err := s.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		updates := map[string]any{
			"embedding":      embedding,
			"profile":        profile,
			"total_duration": totalDuration,
		}
		if err := s.DB.Model(&existing).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("updating speaker: %w", err)
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing speaker: %w", err)
	}

	sp := Speaker{
		ID:            uuid.NewString(),
		Name:          name,
		Embedding:     embedding,
		Profile:       profile,
		TotalDuration: totalDuration,
	}
	if err := s.DB.Create(&sp).Error; err != nil {
		return "", fmt.Errorf("creating speaker: %w", err)
	}
	return sp.ID, nil
}

// Get fetches one speaker by ID.
func (s *Store) Get(id string) (*Speaker, error) {
	if s == nil || s.DB == nil {
		return nil, errStoreNil
	}
	var sp Speaker
	if err := s.DB.Where("id = ?", id).First(&sp).Error; err != nil {
		return nil, fmt.Errorf("querying speaker %s: %w", id, err)
	}
	return &sp, nil
}

// List returns all speakers ordered by name.
func (s *Store) List() ([]Speaker, error) {
	if s == nil || s.DB == nil {
		return nil, errStoreNil
	}
	var speakers []Speaker
	if err := s.DB.Order("name").Find(&speakers).Error; err != nil {
		return nil, fmt.Errorf("listing speakers: %w", err)
	}
	return speakers, nil
}

// Delete removes a speaker by ID.
func (s *Store) Delete(id string) error {
	if s == nil || s.DB == nil {
		return errStoreNil
	}
	return s.DB.Where("id = ?", id).Delete(&Speaker{}).Error
}

// EncodeEmbedding packs a float32 vector into a little-endian blob.
func EncodeEmbedding(emb []float32) []byte {
	out := make([]byte, 4*len(emb))
	for i, v := range emb {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// DecodeEmbedding unpacks a little-endian blob back into a float32 vector.
func DecodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return out, nil
}
