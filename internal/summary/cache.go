package summary

import (
	"context"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/david/contract-finder/internal/store"
)

const keyPrefix = "summary:"

// mirrorSize bounds the session-scoped mirror. Durable entries are never
// evicted; the mirror only saves re-reads within one process lifetime.
const mirrorSize = 256

// Cache maps opportunity id to summary document: a durable first-write-wins
// store fronted by a volatile session mirror.
type Cache struct {
	durable store.Blob
	mirror  *lru.Cache[string, Document]
}

func NewCache(durable store.Blob) (*Cache, error) {
	mirror, err := lru.New[string, Document](mirrorSize)
	if err != nil {
		return nil, err
	}
	return &Cache{durable: durable, mirror: mirror}, nil
}

// Get returns the cached document for id, checking the session mirror before
// the durable store.
func (c *Cache) Get(ctx context.Context, id string) (Document, bool, error) {
	if doc, ok := c.mirror.Get(id); ok {
		return doc, true, nil
	}

	raw, ok, err := c.durable.Read(ctx, keyPrefix+id)
	if err != nil {
		return Document{}, false, fmt.Errorf("summary read failed: %w", err)
	}
	if !ok {
		return Document{}, false, nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Corrupt durable payload reads as a plain miss.
		return Document{}, false, nil
	}

	c.mirror.Add(id, doc)
	return doc, true, nil
}

// PutIfAbsent durably stores the document unless an entry for id already
// exists. It returns true iff this call performed the write; on false the
// stored value, not doc, is the system of record. The mirror is filled with
// doc either way, which is the documented per-session divergence.
func (c *Cache) PutIfAbsent(ctx context.Context, id string, doc Document) (bool, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("summary encode failed: %w", err)
	}

	won, err := c.durable.WriteIfAbsent(ctx, keyPrefix+id, raw)
	if err != nil {
		return false, fmt.Errorf("summary write failed: %w", err)
	}

	c.mirror.Add(id, doc)
	return won, nil
}
