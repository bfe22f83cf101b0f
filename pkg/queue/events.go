package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher 事件发布接口，由 internal/storage/mq.Client 实现.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// PublishFileCreated 发布 file.created 事件.
func PublishFileCreated(ctx context.Context, pub Publisher, payload FileCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileCreated, payload, opts...)
	if err != nil {
		return err
	}

	msg.SetContext(ctx)

	return pub.Publish(ctx, TopicFileCreated, msg)
}

// PublishFileUpdated 发布 file.updated 事件.
func PublishFileUpdated(ctx context.Context, pub Publisher, payload FileUpdatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicFileUpdated, payload, opts...)
	if err != nil {
		return err
	}

	msg.SetContext(ctx)

	return pub.Publish(ctx, TopicFileUpdated, msg)
}

// ParseFileCreated 将 Watermill 消息解析为强类型 Envelope.
func ParseFileCreated(msg *message.Message) (Message[FileCreatedPayload], error) {
	return ParseWatermillMessage[FileCreatedPayload](msg)
}

// ParseFileUpdated 将 Watermill 消息解析为强类型 Envelope.
func ParseFileUpdated(msg *message.Message) (Message[FileUpdatedPayload], error) {
	return ParseWatermillMessage[FileUpdatedPayload](msg)
}
