// Package kv provides the key-value stores that hold persisted grid documents.
//
// A grid is saved as one document under one key. The [Store] interface is
// deliberately small so that every backend can implement it:
//
//   - [FileStore]: JSON files in a directory, for the CLI (default)
//   - [MemoryStore]: process memory, for tests and ephemeral servers
//   - [RedisStore]: Redis, for shared deployments
//   - [MongoStore]: MongoDB, documents additionally mirrored as structured tiles
//
// Keys are produced by a [Keyer]; the default layout is "bento:grid:<name>".
package kv

import (
	"context"
	"time"
)

// Store is a key-value store for grid documents.
type Store interface {
	// Get returns the value stored under key. The boolean is false when the
	// key does not exist or has expired; that is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by configuration.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)
