package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrClosed = errors.New("storage: closed")

// KV is the durable key-value collaborator. Values are opaque strings
// (JSON blobs in practice). A missing key is not an error: Get reports ok=false.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

type Options struct {
	Backend       string // sqlite, redis or memory
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open builds the KV backend selected by opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", "sqlite":
		return NewSQLiteKV(opts.SQLitePath)
	case "redis":
		return NewRedisKV(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}
}
