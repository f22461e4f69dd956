package kv

import (
	"context"

	"github.com/matzehuels/bentogrid/pkg/errors"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string      `toml:"backend" yaml:"backend"`
	Dir     string      `toml:"dir" yaml:"dir"`
	Redis   RedisConfig `toml:"redis" yaml:"redis"`
	Mongo   MongoConfig `toml:"mongo" yaml:"mongo"`
}

// Open creates the store named by opts.Backend. An empty backend means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file store needs a directory")
		}
		return NewFileStore(opts.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.Redis)
	case BackendMongo:
		return NewMongoStore(ctx, opts.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want file, memory, redis or mongo)", opts.Backend)
	}
}
