// NATS 传输工厂：创建 watermill Publisher/Subscriber，
// 支持集群 URL、JWT/NKey/账号密码认证与可选 JetStream 持久化.

package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/objectvault/pkg/configs"
)

const (
	defaultDrainTimeout   = 30 * time.Second
	defaultFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

func natsFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	opts := natsConnOptions(cfg)
	jsCfg := jetStreamConfig(cfg, logger)
	marshaler := &nats.JSONMarshaler{}
	url := natsURL(cfg)

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.NATS.LoadBalance {
		logger.Info("通过主题前缀启用负载均衡", watermill.LogFields{
			"prefix": cfg.NATS.SubjectPrefix,
		})
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Unmarshaler: marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	return pub, sub, nil
}

// natsConnOptions 连接选项：断线重连开启，认证按配置择一.
func natsConnOptions(cfg *configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.Common.ClientID),
		nc.MaxReconnects(cfg.Common.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.Common.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(cfg.Common.PingInterval) * time.Second),
		nc.ReconnectBufSize(cfg.Common.BufferSize),
		nc.DrainTimeout(defaultDrainTimeout),
		nc.FlusherTimeout(defaultFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	switch {
	case cfg.NATS.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.NATS.JWT, cfg.NATS.NKey))
	case cfg.NATS.NKey != "":
		opts = append(opts, nc.Nkey(cfg.NATS.NKey, nil))
	case cfg.Common.User != "":
		opts = append(opts, nc.UserInfo(cfg.Common.User, cfg.Common.Password))
	}

	return opts
}

func jetStreamConfig(cfg *configs.MQConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	jsCfg := nats.JetStreamConfig{
		Disabled: !cfg.NATS.JetStreamEnabled,
	}

	if !cfg.NATS.JetStreamEnabled {
		return jsCfg
	}

	jsCfg.AutoProvision = cfg.NATS.JetStreamAutoProvision
	jsCfg.TrackMsgId = cfg.NATS.JetStreamTrackMsgID
	jsCfg.AckAsync = cfg.NATS.JetStreamAckAsync
	jsCfg.DurablePrefix = cfg.NATS.JetStreamDurablePrefix

	logger.Info("JetStream 已启用", watermill.LogFields{
		"auto_provision": cfg.NATS.JetStreamAutoProvision,
		"track_msg_id":   cfg.NATS.JetStreamTrackMsgID,
		"ack_async":      cfg.NATS.JetStreamAckAsync,
		"durable_prefix": cfg.NATS.JetStreamDurablePrefix,
		"stream_name":    cfg.NATS.StreamName,
		"subject_prefix": cfg.NATS.SubjectPrefix,
	})

	return jsCfg
}

// natsURL 集群地址优先，逗号拼接交给客户端解析.
func natsURL(cfg *configs.MQConfig) string {
	if len(cfg.NATS.ClusterURLs) > 0 {
		return strings.Join(cfg.NATS.ClusterURLs, ",")
	}

	return cfg.Common.URL
}
