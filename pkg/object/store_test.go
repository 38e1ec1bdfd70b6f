package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestHashBytesDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := HashBytes(data)
	h2 := HashBytes(data)
	if h1 != h2 {
		t.Errorf("HashBytes not deterministic: %s != %s", h1, h2)
	}
	if len(h1.String()) != 64 {
		t.Errorf("hex length: got %d, want 64", len(h1.String()))
	}
}

func TestHashObjectEnvelope(t *testing.T) {
	data := []byte("hello")
	h1 := HashObject(KindFeature, data)
	if h1 == HashBytes(data) {
		t.Error("HashObject should differ from HashBytes due to envelope")
	}
	if h1 != HashObject(KindFeature, data) {
		t.Error("HashObject not deterministic")
	}
	if h1 == HashObject(KindFeatureType, data) {
		t.Error("different kinds should produce different ids")
	}
}

func tempStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	return NewStore(t.TempDir(), opts...)
}

func TestStorePutGet(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world")
	id, err := s.Put(KindFeature, data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if id != HashObject(KindFeature, data) {
		t.Fatalf("Put id = %s, want %s", id, HashObject(KindFeature, data))
	}

	kind, got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if kind != KindFeature {
		t.Errorf("kind: got %s, want %s", kind, KindFeature)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("data: got %q, want %q", got, data)
	}
}

func TestStorePutIdempotent(t *testing.T) {
	s := tempStore(t)
	id1, err := s.Put(KindTree, []byte("same"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	id2, err := s.Put(KindTree, []byte("same"))
	if err != nil {
		t.Fatalf("Put again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("ids differ: %s vs %s", id1, id2)
	}
}

func TestStoreFanOutLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	id, err := s.Put(KindCommit, []byte("layout"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	hex := id.String()
	p := filepath.Join(dir, "objects", hex[:2], hex[2:])
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("expected object file at %s: %v", p, err)
	}
	zstdMagic := []byte{0x28, 0xb5, 0x2f, 0xfd}
	if !bytes.HasPrefix(raw, zstdMagic) {
		t.Fatalf("object file should start with zstd magic, got % x", raw)
	}
}

func TestStoreCompressionLevels(t *testing.T) {
	data := bytes.Repeat([]byte("feature "), 512)
	for _, level := range []zstd.EncoderLevel{zstd.SpeedFastest, zstd.SpeedBestCompression} {
		s := tempStore(t, WithCompression(level))
		id, err := s.Put(KindFeature, data)
		if err != nil {
			t.Fatalf("Put(%s): %v", level, err)
		}
		got, err := s.GetKind(id, KindFeature)
		if err != nil {
			t.Fatalf("GetKind(%s): %v", level, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("level %s: round trip mismatch", level)
		}
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := tempStore(t)
	_, _, err := s.Get(HashBytes([]byte("nope")))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
	if s.Has(HashBytes([]byte("nope"))) {
		t.Fatal("Has should be false for missing object")
	}
}

func TestStoreGetNull(t *testing.T) {
	s := tempStore(t)
	if _, _, err := s.Get(NullID); !errors.Is(err, ErrNullID) {
		t.Fatalf("Get(NullID): got %v, want ErrNullID", err)
	}
}

func TestStorePutRejectsKindNone(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Put(KindNone, []byte("x")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Put(KindNone): got %v, want ErrUnknownKind", err)
	}
}

func TestStoreGetKindMismatch(t *testing.T) {
	s := tempStore(t)
	id, err := s.Put(KindTag, []byte("v1"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.GetKind(id, KindCommit); err == nil {
		t.Fatal("expected kind mismatch error")
	}
}

func TestStoreGetCorrupt(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	id, err := s.Put(KindFeature, []byte("data"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.WriteFile(s.objectPath(id), []byte("not zstd"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, _, err := s.Get(id); err == nil {
		t.Fatal("expected error reading corrupt object")
	}
}
