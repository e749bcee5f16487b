// Package contentstore implements the external content collaborator: opaque
// blobs go in, content references come out. References are hex SHA-256 of the
// blob, so storing the same bytes twice yields the same reference and the
// store is naturally idempotent. The ledger never touches this package — it
// only ever records the reference strings callers obtain here.
package contentstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrNotFound is returned when a content reference resolves to nothing.
var ErrNotFound = errors.New("content not found")

// Store defines the interface for content blob storage
type Store interface {
	// Store saves the blob and returns its content reference.
	Store(ctx context.Context, data []byte) (string, error)
	// Retrieve returns the blob for a reference, or ErrNotFound.
	Retrieve(ctx context.Context, contentRef string) ([]byte, error)
}

// Ref computes the content reference for a blob.
func Ref(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
