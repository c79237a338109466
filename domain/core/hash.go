package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// DeriveSeed folds a master seed, a stream name, and an exchangeable
// logical identifier into a sub-seed. The derivation is pure: the same
// inputs always yield the same seed, and distinct stream names or
// identifiers decorrelate through SHA-256.
func DeriveSeed(masterSeed int64, streamName string, logicalID string) int64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", masterSeed, streamName, logicalID)))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
