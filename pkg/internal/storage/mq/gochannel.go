package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/filecdn/pkg/configs"
)

// DefaultChannelBufferSize 默认通道缓冲区大小.
const DefaultChannelBufferSize = 64

func init() {
	RegisterFactory(configs.EventsTypeGoChannel, goChannelFactory)
}

// goChannelFactory 进程内 pub/sub，没有订阅者时消息被丢弃.
func goChannelFactory(
	_ context.Context,
	_ *configs.EventsConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: DefaultChannelBufferSize}, logger)

	return ch, ch, nil
}
