package object

import (
	"crypto/sha256"
	"fmt"
)

// HashBytes computes the raw SHA-256 of data.
func HashBytes(data []byte) ID {
	return ID(sha256.Sum256(data))
}

// HashObject computes the SHA-256 of the envelope "kind len\0content",
// mirroring Git's object hashing but with SHA-256.
func HashObject(kind Kind, data []byte) ID {
	header := fmt.Sprintf("%s %d\x00", kind, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}
