package storage

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "library", DefaultDBFile))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateGetDelete(t *testing.T) {
	s := newTestStore(t)

	emb := EncodeEmbedding([]float32{0.1, 0.2, 0.3})
	id, err := s.Create("alice", emb, []byte(`{"pitch_mean":120}`), 42.5)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated ID")
	}

	sp, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sp.Name != "alice" || sp.TotalDuration != 42.5 {
		t.Errorf("got %+v", sp)
	}
	got, err := DecodeEmbedding(sp.Embedding)
	if err != nil {
		t.Fatalf("DecodeEmbedding failed: %v", err)
	}
	if len(got) != 3 || got[1] != 0.2 {
		t.Errorf("embedding roundtrip: %v", got)
	}
	if sp.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(id); err == nil {
		t.Error("Get after Delete should fail")
	}
}

func TestCreateSameNameUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.Create("bob", EncodeEmbedding([]float32{1}), nil, 10)
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	id2, err := s.Create("bob", EncodeEmbedding([]float32{2}), nil, 20)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("re-enrollment changed the ID: %s vs %s", id1, id2)
	}

	sp, err := s.Get(id1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sp.TotalDuration != 20 {
		t.Errorf("TotalDuration = %f, want the updated 20", sp.TotalDuration)
	}
	emb, _ := DecodeEmbedding(sp.Embedding)
	if emb[0] != 2 {
		t.Errorf("embedding not updated: %v", emb)
	}

	speakers, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(speakers) != 1 {
		t.Fatalf("expected a single row, got %d", len(speakers))
	}
}

func TestListOrdersByName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"zoe", "amy", "mia"} {
		if _, err := s.Create(name, EncodeEmbedding([]float32{1}), nil, 1); err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
	}

	speakers, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"amy", "mia", "zoe"}
	if len(speakers) != len(want) {
		t.Fatalf("got %d speakers, want %d", len(speakers), len(want))
	}
	for i, name := range want {
		if speakers[i].Name != name {
			t.Errorf("speakers[%d].Name = %q, want %q", i, speakers[i].Name, name)
		}
	}
}

func TestEmbeddingCodec(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, 3.14159, -2.5e-3}
	out, err := DecodeEmbedding(EncodeEmbedding(in))
	if err != nil {
		t.Fatalf("roundtrip failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}

	if _, err := DecodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for a blob that is not a multiple of 4 bytes")
	}
}

func TestNilStoreGuards(t *testing.T) {
	var s *Store
	if _, err := s.Create("x", nil, nil, 0); err == nil {
		t.Error("nil store Create should error")
	}
	if _, err := s.List(); err == nil {
		t.Error("nil store List should error")
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil store Close should be a no-op, got %v", err)
	}
}
