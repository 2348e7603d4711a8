package store

import "context"

// Blob is the durable key-value surface the core writes through. Values are
// opaque byte payloads; the serialization format belongs to the caller.
type Blob interface {
	// Read returns the stored payload and whether the key exists.
	Read(ctx context.Context, key string) ([]byte, bool, error)

	// Write stores the payload unconditionally.
	Write(ctx context.Context, key string, val []byte) error

	// WriteIfAbsent stores the payload only when the key does not exist yet.
	// It returns true iff this call performed the write, and is race-safe
	// against a concurrent WriteIfAbsent for the same key.
	WriteIfAbsent(ctx context.Context, key string, val []byte) (bool, error)
}
