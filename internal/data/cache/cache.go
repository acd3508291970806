// Package cache keeps read-through copies of contact aggregates in redis.
// The database stays authoritative: entries expire after a TTL and every
// committed write invalidates the contact's entry.
package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/contacts-backend/internal/domain/contacts"
)

// Lookup is the result of a cache read. Version is the contact's invalidation
// generation at lookup time; a miss hands it back to Set.
type Lookup struct {
	Contact *contacts.Contact
	Hit     bool
	Version int64
}

type ContactCache interface {
	Get(ctx context.Context, id uuid.UUID) (Lookup, error)
	// Set stores c unless the contact was invalidated after the Lookup that
	// produced version. A skipped write is not an error.
	Set(ctx context.Context, c *contacts.Contact, version int64) error
	// Invalidate drops the entry and advances the contact's generation.
	Invalidate(ctx context.Context, id uuid.UUID) error
	Close() error
}

type noopCache struct{}

// Noop returns a cache that never hits, used when no redis is configured.
func Noop() ContactCache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (Lookup, error)      { return Lookup{}, nil }
func (noopCache) Set(context.Context, *contacts.Contact, int64) error { return nil }
func (noopCache) Invalidate(context.Context, uuid.UUID) error         { return nil }
func (noopCache) Close() error                                        { return nil }
