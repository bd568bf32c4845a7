package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

// ErrPermanent marks a handler failure that redelivery cannot fix, such as
// a payload that does not decode. The bus drops the message without retrying.
var ErrPermanent = errors.New("events: permanent failure")

// Permanent wraps err so the bus skips the remaining retries.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Handler processes one message. It must be idempotent.
type Handler func(context.Context, *message.Message) error

// Subscriber is the part of EventBus that SubscribeAll needs.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// Route binds a handler to a topic.
type Route struct {
	Topic   string
	Handler Handler
}

// SubscribeAll registers every route and logs handler failures from each
// error channel until it closes. It stops at the first registration error
// and returns the topics registered so far.
func SubscribeAll(ctx context.Context, sub Subscriber, log logger.Logger, routes ...Route) ([]string, error) {
	topics := make([]string, 0, len(routes))
	for _, rt := range routes {
		errCh, err := sub.Subscribe(ctx, rt.Topic, rt.Handler)
		if err != nil {
			return topics, err
		}
		topics = append(topics, rt.Topic)

		go func(topic string) {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error",
					"topic", topic,
					"permanent", errors.Is(err, ErrPermanent),
					"error", err,
				)
			}
		}(rt.Topic)
	}
	return topics, nil
}

// JSON adapts a typed handler to a Handler. Payloads that fail to decode
// are permanent failures.
func JSON[T any](fn func(context.Context, T) error) Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var v T
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			return Permanent(fmt.Errorf("decode %T: %w", v, err))
		}
		return fn(ctx, v)
	}
}
