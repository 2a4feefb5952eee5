// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package store

import (
	"context"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
	backend "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Redis is a Store backed by a Redis server. Presets are stored as YAML
// strings under <prefix>:preset:<name>; a sorted set scored by a save
// counter keeps the listing order.
//
type Redis struct {
	client *backend.Client
	prefix string
}

// RedisOption configures a Redis store.
//
type RedisOption func(*Redis)

// WithPrefix sets the key prefix. The default is "logsim".
//
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRedis connects to the Redis server at addr.
//
func NewRedis(addr, password string, db int, opts ...RedisOption) *Redis {
	return NewRedisFromClient(backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisFromClient returns a store using an existing client.
//
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: "logsim"}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Redis) key(name string) string { return r.prefix + ":preset:" + name }
func (r *Redis) indexKey() string       { return r.prefix + ":index" }
func (r *Redis) seqKey() string         { return r.prefix + ":seq" }

// Ping checks the connection to the server.
//
func (r *Redis) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx).Err(), "redis ping")
}

// Save implements Store.
//
func (r *Redis) Save(ctx context.Context, p logsim.PresetData) error {
	if p.Name == "" {
		return errors.New("save: empty preset name")
	}
	data, err := yaml.Marshal(&p)
	if err != nil {
		return errors.Wrap(err, "failed to marshal preset")
	}
	seq, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return errors.Wrap(err, "failed to allocate sequence number")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(p.Name), data, 0)
	// NX keeps the position of replaced presets.
	pipe.ZAddNX(ctx, r.indexKey(), backend.Z{Score: float64(seq), Member: p.Name})
	if _, err = pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to save to redis")
	}
	return nil
}

// Load implements Store.
//
func (r *Redis) Load(ctx context.Context, name string) (logsim.PresetData, error) {
	var p logsim.PresetData
	val, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return p, errors.Wrapf(ErrNotFound, "%s", name)
		}
		return p, errors.Wrap(err, "failed to get from redis")
	}
	if err = yaml.Unmarshal(val, &p); err != nil {
		return p, errors.Wrap(err, "failed to unmarshal preset")
	}
	return p, nil
}

// List implements Store.
//
func (r *Redis) List(ctx context.Context) ([]string, error) {
	names, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list presets")
	}
	return names, nil
}

// Delete implements Store.
//
func (r *Redis) Delete(ctx context.Context, name string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(name))
	pipe.ZRem(ctx, r.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to delete from redis")
	}
	if del.Val() == 0 {
		return errors.Wrapf(ErrNotFound, "%s", name)
	}
	return nil
}

// Close closes the client.
//
func (r *Redis) Close() error { return r.client.Close() }
