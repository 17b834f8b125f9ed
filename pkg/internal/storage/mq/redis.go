// Redis 传输工厂：基于 go-redis 的 Pub/Sub 实现 watermill 接口，
// 适合单实例部署或不需要持久化投递的场景.

package mq

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/objectvault/pkg/configs"
	nlog "github.com/yeisme/objectvault/pkg/log"
)

// redisChannelBuffer 订阅通道的缓冲长度.
const redisChannelBuffer = 100

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	pub := &redisPublisher{client: rdb}
	sub := &redisSubscriber{
		client:  rdb,
		closeCh: make(chan struct{}),
	}

	return pub, sub, nil
}

// redisPublisher 把消息负载直接 PUBLISH 到同名频道.
type redisPublisher struct {
	client *redis.Client
}

func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(context.Background(), topic, []byte(msg.Payload)).Err(); err != nil {
			return err
		}

		// Pub/Sub 没有投递确认，发出即认为成功
		msg.Ack()
	}

	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

// redisSubscriber 每次 Subscribe 打开一个 PubSub 连接并转发到 watermill 通道.
type redisSubscriber struct {
	client  *redis.Client
	mu      sync.Mutex
	subs    []*redis.PubSub
	closed  bool
	closeCh chan struct{}
}

func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil
	}

	pubsub := s.client.Subscribe(ctx, topic)
	s.subs = append(s.subs, pubsub)

	ch := make(chan *message.Message, redisChannelBuffer)

	go func() {
		defer close(ch)

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			wmMsg := message.NewMessage(watermill.NewUUID(), []byte(msg.Payload))

			select {
			case ch <- wmMsg:
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.closeCh)

	for _, pubsub := range s.subs {
		if err := pubsub.Close(); err != nil {
			nlog.Logger().Warn().Err(err).Msg("关闭 Redis 订阅失败")
		}
	}

	return s.client.Close()
}
