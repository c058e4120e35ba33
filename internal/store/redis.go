package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/todomaster/internal/credential"
)

// RedisOptions configures a RedisBackend.
type RedisOptions struct {
	// URL is a redis:// or rediss:// connection string.
	URL string
	// Password is consulted when the URL carries none. Nil means the
	// system keyring entry credential.RedisPasswordKey.
	Password func() (string, error)
	// Prefix namespaces every slot key.
	Prefix string
}

// RedisBackend stores each slot as a Redis string.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects and pings the server.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if ropts.Password == "" {
		lookup := opts.Password
		if lookup == nil {
			lookup = func() (string, error) { return credential.Get(credential.RedisPasswordKey) }
		}
		// A missing keyring entry just means the server has no auth.
		if pw, err := lookup(); err == nil {
			ropts.Password = pw
		}
	}

	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", ropts.Addr, err)
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "todomaster:"
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

// NewRedisBackendFromClient wraps an existing client without pinging it.
func NewRedisBackendFromClient(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.Get(ctx, b.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return v, true, nil
}

func (b *RedisBackend) Put(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, b.prefix+key, value, 0).Err(); err != nil {
		// maxmemory rejections come back as "OOM command not allowed ...".
		if strings.HasPrefix(err.Error(), "OOM") {
			return fmt.Errorf("writing slot %s: %w: %w", key, errBackendFull, err)
		}
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
