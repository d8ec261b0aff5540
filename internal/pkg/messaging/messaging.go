package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned for an empty topic or subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume gets a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrClosed is returned once the client has been closed.
	ErrClosed = errors.New("messaging: client closed")
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to publish.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning.
	Key []byte
	// Headers are dropped by brokers without header support (NSQ).
	Headers []Header
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker metadata of a publish.
type PublishResult struct {
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	ID() string
	Topic() string
	Timestamp() time.Time

	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
}

// Nackable can request a redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// HeaderValue returns the first value of header key, or "".
func HeaderValue(msg Message, key string) string {
	for _, h := range msg.Headers() {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// finish applies auto-ack after a handler returned.
func finish(ctx context.Context, msg Message, autoAck bool, herr error) error {
	if !autoAck {
		return nil
	}
	if herr == nil {
		return msg.Ack(ctx)
	}
	if n, ok := msg.(Nackable); ok {
		return n.Nack(ctx)
	}
	return nil
}

func concurrencyOrDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
