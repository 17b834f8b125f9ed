package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// NATS KV 的 TTL 是桶级别的，按键过期靠把截止时间编进值里实现。
// 带前缀魔数，未包装的历史值原样返回.
const ttlPrefix = "OVTTL1:"

type ttlEnvelope struct {
	V []byte `json:"v"`
	E int64  `json:"e,omitempty"` // unix 秒，0 表示不过期
}

// wrapTTL ttl>0 时编码为带截止时间的信封，否则原样返回.
func wrapTTL(value []byte, ttl time.Duration) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	env := ttlEnvelope{V: value, E: time.Now().Add(ttl).Unix()}

	b, err := sonic.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal ttl envelope: %w", err)
	}

	return append([]byte(ttlPrefix), b...), nil
}

// unwrapTTL 解包并判定过期。未包装的值按未过期原样返回.
func unwrapTTL(b []byte, now time.Time) (value []byte, expired bool, err error) {
	if !bytes.HasPrefix(b, []byte(ttlPrefix)) {
		return b, false, nil
	}

	var env ttlEnvelope
	if err := sonic.Unmarshal(b[len(ttlPrefix):], &env); err != nil {
		return nil, false, fmt.Errorf("unmarshal ttl envelope: %w", err)
	}

	if env.E > 0 && now.Unix() >= env.E {
		return nil, true, nil
	}

	return env.V, false, nil
}
