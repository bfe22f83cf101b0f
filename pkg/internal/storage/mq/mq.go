// Package mq 提供基于 Watermill 库的文件事件发布/订阅客户端.
// 通过工厂模式抽象不同的 MQ 实现.
//
// 支持的 MQ 类型：
//   - gochannel（进程内，默认）
//   - NATS（支持 JetStream）
//   - Redis pub/sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.Events, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = queue.PublishFileCreated(ctx, client, payload)
package mq

import (
	"context"
	"fmt"
	"sort"
	"strings"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/metrics"
	"github.com/yeisme/filecdn/pkg/queue"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.EventsConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[string]Factory{}

// RegisterFactory 注册指定类型的工厂.
func RegisterFactory(t string, f Factory) {
	factories[t] = f
}

// RegisteredTypes 返回已注册的 MQ 类型，按名称排序.
func RegisteredTypes() []string {
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	prefix     string
	enabled    map[string]bool
}

// Options 可选项.
type Options struct {
	// Metrics 用 watermill 的 prometheus 组件装饰 publisher/subscriber.
	Metrics bool
}

// New 根据配置创建客户端.
func New(ctx context.Context, cfg configs.EventsConfig, zl *zerolog.Logger, opts Options) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(zl)

	pub, sub, err := factory(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if opts.Metrics {
		builder := wmetrics.NewPrometheusMetricsBuilder(metrics.GetRegistry(), "filecdn", "events")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	zl.Info().Str("type", cfg.Type).Msg("event publisher initialized")

	return &Client{
		publisher:  pub,
		subscriber: sub,
		prefix:     cfg.NATS.SubjectPrefix,
		enabled: map[string]bool{
			queue.TopicFileCreated: cfg.Created,
			queue.TopicFileUpdated: cfg.Updated,
		},
	}, nil
}

// Subject 返回主题在总线上的完整名称.
func (c *Client) Subject(topic string) string {
	if c.prefix == "" {
		return topic
	}

	return strings.TrimSuffix(c.prefix, ".") + "." + topic
}

// Publish 发布到 topic；在配置中被关闭的已知主题会被静默跳过.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	if on, known := c.enabled[topic]; known && !on {
		return nil
	}

	return c.publisher.Publish(c.Subject(topic), msgs...)
}

// Subscribe 订阅 topic.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, c.Subject(topic))
}

// Close 关闭资源. 先关订阅者再关发布者，redis 的连接池由发布者持有.
func (c *Client) Close() error {
	var err error

	// gochannel 的 publisher 与 subscriber 是同一个实例，重复 Close 是安全的
	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	return err
}
