package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/filecdn/pkg/configs"
)

const (
	// redisChannelBufferSize 每个订阅的默认缓冲区大小.
	redisChannelBufferSize = 100
)

// ErrSubscriberClosed 订阅者已关闭.
var ErrSubscriberClosed = errors.New("redis subscriber closed")

// RedisPublisher 通过 Redis PUBLISH 投递事件. 消息体即事件信封，元数据不随消息传输.
type RedisPublisher struct {
	client *redis.Client
}

// RedisSubscriber 基于 Redis pub/sub 的订阅者. 每个 Subscribe 调用持有一个独立的 PubSub.
type RedisSubscriber struct {
	client  *redis.Client
	logger  watermill.LoggerAdapter
	subs    []*redis.PubSub
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// init 注册 Redis 工厂.
func init() {
	RegisterFactory(configs.EventsTypeRedis, redisFactory)
}

// redisFactory 创建共享同一个连接池的 Publisher 与 Subscriber.
func redisFactory(
	ctx context.Context,
	cfg *configs.EventsConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})

	// 测试连接
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	pub := &RedisPublisher{client: rdb}
	sub := &RedisSubscriber{
		client:  rdb,
		logger:  logger.With(watermill.LogFields{"backend": "redis"}),
		closeCh: make(chan struct{}),
	}

	return pub, sub, nil
}

// Publish 实现 message.Publisher.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(context.Background(), topic, []byte(msg.Payload)).Err(); err != nil {
			return fmt.Errorf("redis publish %s: %w", topic, err)
		}
	}

	return nil
}

// Close 关闭共享连接池.
func (p *RedisPublisher) Close() error {
	err := p.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}

	return err
}

// Subscribe 实现 message.Subscriber. 返回前订阅已在服务端生效.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSubscriberClosed
	}

	ps := s.client.Subscribe(ctx, topic)

	// 等待 SUBSCRIBE 确认，避免随后的发布丢失
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()

		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	s.subs = append(s.subs, ps)

	ch := make(chan *message.Message, redisChannelBufferSize)

	s.wg.Add(1)

	go s.consume(ctx, topic, ps, ch)

	return ch, nil
}

// consume 把 Redis 消息转发为 watermill 消息，逐条等待 Ack 或 Nack.
func (s *RedisSubscriber) consume(ctx context.Context, topic string, ps *redis.PubSub, out chan<- *message.Message) {
	defer s.wg.Done()
	defer close(out)

	in := ps.Channel()

	for {
		var raw *redis.Message

		select {
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}

			raw = m
		}

		msg := message.NewMessage(watermill.NewUUID(), []byte(raw.Payload))
		msg.Metadata.Set("topic", topic)

		select {
		case out <- msg:
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		}

		select {
		case <-msg.Acked():
		case <-msg.Nacked():
			// pub/sub 无法重投，只记录
			s.logger.Info("message nacked, dropping", watermill.LogFields{"topic": topic, "uuid": msg.UUID})
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close 关闭全部订阅. 连接池由 Publisher 关闭.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	close(s.closeCh)

	var errs []error

	for _, ps := range s.subs {
		if err := ps.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			s.logger.Error("close redis subscription", err, nil)
			errs = append(errs, err)
		}
	}

	s.subs = nil
	s.mu.Unlock()

	s.wg.Wait()

	return errors.Join(errs...)
}
