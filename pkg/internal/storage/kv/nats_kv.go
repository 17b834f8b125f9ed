package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/objectvault/pkg/configs"
)

// natsStore 基于 JetStream KV 桶。按键 TTL 通过值信封实现（见 ttl.go），
// 读路径发现过期即惰性删除.
type natsStore struct {
	conn   *nats.Conn
	bucket nats.KeyValue
}

func newNATSStore(_ context.Context, cfg configs.KVConfig) (KVStore, error) {
	var opts []nats.Option
	if cfg.NATS.User != "" {
		opts = append(opts, nats.UserInfo(cfg.NATS.User, cfg.NATS.Password))
	}

	conn, err := nats.Connect(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.NATS.URL, err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	bucket, err := js.CreateKeyValue(&nats.KeyValueConfig{Bucket: cfg.NATS.Bucket})
	if err != nil {
		// 桶已存在时直接绑定
		bucket, err = js.KeyValue(cfg.NATS.Bucket)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("bind kv bucket %s: %w", cfg.NATS.Bucket, err)
		}
	}

	return &natsStore{conn: conn, bucket: bucket}, nil
}

func (n *natsStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, err := n.bucket.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	val, expired, err := unwrapTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.bucket.Delete(key)
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}

	return val, nil
}

func (n *natsStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.bucket.Put(key, encoded); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	return nil
}

func (n *natsStore) Delete(_ context.Context, key string) error {
	if err := n.bucket.Delete(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func (n *natsStore) Exists(_ context.Context, key string) (bool, error) {
	entry, err := n.bucket.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}

	_, expired, err := unwrapTTL(entry.Value(), time.Now())
	if err != nil {
		return false, err
	}

	if expired {
		_ = n.bucket.Delete(key)
		return false, nil
	}

	return true, nil
}

func (n *natsStore) Keys(_ context.Context, pattern string) ([]string, error) {
	all, err := n.bucket.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	now := time.Now()
	keys := make([]string, 0, len(all))

	for _, key := range all {
		if !matchPattern(key, pattern) {
			continue
		}

		if entry, gerr := n.bucket.Get(key); gerr == nil {
			if _, expired, derr := unwrapTTL(entry.Value(), now); derr == nil && expired {
				_ = n.bucket.Delete(key)
				continue
			}
		}

		keys = append(keys, key)
	}

	return keys, nil
}

func (n *natsStore) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, newNATSStore)
}
