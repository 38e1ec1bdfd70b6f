package object

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrNotFound = errors.New("object not found")
	ErrNullID   = errors.New("null object id")
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the zstd
// compressed envelope "kind len\0content".
type Store struct {
	root  string
	level zstd.EncoderLevel
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCompression sets the zstd level used for new objects. Reads accept
// any level.
func WithCompression(level zstd.EncoderLevel) StoreOption {
	return func(s *Store) {
		s.level = level
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root, level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) objectPath(id ID) string {
	h := id.String()
	return filepath.Join(s.root, "objects", h[:2], h[2:])
}

// Has reports whether the store contains an object with the given id.
func (s *Store) Has(id ID) bool {
	if id.IsNull() {
		return false
	}
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// Put stores an object and returns its content id. Writes are atomic: data
// is written to a temp file and then renamed into place. Storing content
// that already exists is a no-op.
func (s *Store) Put(kind Kind, data []byte) (ID, error) {
	if !kind.Valid() {
		return NullID, fmt.Errorf("object put: %w: %s", ErrUnknownKind, kind)
	}
	id := HashObject(kind, data)
	if s.Has(id) {
		return id, nil
	}

	envelope := fmt.Sprintf("%s %d\x00", kind, len(data))
	raw := append([]byte(envelope), data...)
	compressed, err := s.compress(raw)
	if err != nil {
		return NullID, fmt.Errorf("object put %s: compress: %w", id, err)
	}

	dir := filepath.Dir(s.objectPath(id))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NullID, fmt.Errorf("object put mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return NullID, fmt.Errorf("object put tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return NullID, fmt.Errorf("object put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return NullID, fmt.Errorf("object put close: %w", err)
	}
	if err := os.Rename(tmpName, s.objectPath(id)); err != nil {
		os.Remove(tmpName)
		return NullID, fmt.Errorf("object put rename: %w", err)
	}
	return id, nil
}

// Get retrieves an object by id, returning its kind and raw content.
func (s *Store) Get(id ID) (Kind, []byte, error) {
	if id.IsNull() {
		return KindNone, nil, fmt.Errorf("object get: %w", ErrNullID)
	}
	compressed, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return KindNone, nil, fmt.Errorf("object get %s: %w", id, ErrNotFound)
		}
		return KindNone, nil, fmt.Errorf("object get %s: %w", id, err)
	}
	raw, err := decompress(compressed)
	if err != nil {
		return KindNone, nil, fmt.Errorf("object get %s: decompress: %w", id, err)
	}

	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return KindNone, nil, fmt.Errorf("object get %s: invalid format (no NUL)", id)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	kindName, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return KindNone, nil, fmt.Errorf("object get %s: invalid header %q", id, header)
	}
	kind, err := ParseKind(kindName)
	if err != nil {
		return KindNone, nil, fmt.Errorf("object get %s: %w", id, err)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return KindNone, nil, fmt.Errorf("object get %s: invalid length %q: %w", id, lenStr, err)
	}
	if len(content) != length {
		return KindNone, nil, fmt.Errorf("object get %s: length mismatch (header=%d, actual=%d)", id, length, len(content))
	}
	return kind, content, nil
}

// GetKind reads an object and checks that it has the wanted kind.
func (s *Store) GetKind(id ID, want Kind) ([]byte, error) {
	kind, data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != want {
		return nil, fmt.Errorf("object %s: kind mismatch: got %s, want %s", id, kind, want)
	}
	return data, nil
}

func (s *Store) compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(s.level))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
