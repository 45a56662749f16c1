package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the key-value collaborator contract. Listing is paginated and only
// eventually consistent: a scan started before a concurrent write may or may
// not observe it. Callers that need authoritative numbers use the relational
// store and treat scans as best-effort.
type Store interface {
	// List returns up to limit keys sharing prefix, in ascending key order,
	// starting strictly after cursor. An empty next cursor means no more pages.
	List(ctx context.Context, prefix, cursor string, limit int) (keys []string, next string, err error)

	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes key=value. A non-zero ttl marks the value as expiring; expired
	// values behave as absent on read.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
