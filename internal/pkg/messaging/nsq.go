package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// NSQConfig configures the NSQ driver.
type NSQConfig struct {
	ProducerAddr         string
	ConsumerNSQDAddrs    []string
	ConsumerLookupdAddrs []string
}

// NSQ is an NSQ client. NSQ carries no headers; Headers are dropped on publish.
type NSQ struct {
	producer *nsq.Producer
	nsqd     []string
	lookupd  []string

	mu        sync.Mutex
	consumers []*nsq.Consumer
	closed    bool
}

// NewNSQ creates the producer when ProducerAddr is set.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{nsqd: cfg.ConsumerNSQDAddrs, lookupd: cfg.ConsumerLookupdAddrs}
	if cfg.ProducerAddr != "" {
		p, err := nsq.NewProducer(cfg.ProducerAddr, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
		}
		p.SetLoggerLevel(nsq.LogLevelError)
		n.producer = p
	}
	return n, nil
}

// Close stops consumers and the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	consumers := n.consumers
	n.consumers = nil
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
		<-c.StopChan
	}
	if n.producer != nil {
		n.producer.Stop()
	}
	return nil
}

// Publish sends the body to a topic.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if n.producer == nil {
		return PublishResult{}, errors.New("messaging: nsq producer address is required")
	}
	if err := n.producer.Publish(destination, msg.Body); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Consume reads topic on the channel given by WithChannel until ctx is done.
func (n *NSQ) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	co := newConsumeOptions(opts...)
	if co.channel == "" {
		return errors.New("messaging: nsq channel is required")
	}
	if len(n.nsqd) == 0 && len(n.lookupd) == 0 {
		return errors.New("messaging: nsq consumer addresses are required")
	}
	concurrency := concurrencyOrDefault(co.concurrency, 1)

	cfg := nsq.NewConfig()
	cfg.MaxInFlight = max(co.maxInFlight, concurrency)
	consumer, err := nsq.NewConsumer(source, co.channel, cfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)
	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		wrapped := &nsqMessage{topic: source, msg: m}
		herr := callHandlerWithRecover(ctx, "nsq", func() error { return handler(ctx, wrapped) })
		return finish(ctx, wrapped, co.autoAck, herr)
	}), concurrency)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		consumer.Stop()
		return ErrClosed
	}
	n.consumers = append(n.consumers, consumer)
	n.mu.Unlock()

	if len(n.lookupd) > 0 {
		err = consumer.ConnectToNSQLookupds(n.lookupd)
	} else {
		err = consumer.ConnectToNSQDs(n.nsqd)
	}
	if err != nil {
		consumer.Stop()
		<-consumer.StopChan
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

type nsqMessage struct {
	topic string
	msg   *nsq.Message
}

func (m *nsqMessage) Body() []byte { return m.msg.Body }

func (m *nsqMessage) Key() []byte { return nil }

func (m *nsqMessage) Headers() []Header { return nil }

func (m *nsqMessage) ID() string { return string(m.msg.ID[:]) }

func (m *nsqMessage) Topic() string { return m.topic }

func (m *nsqMessage) Timestamp() time.Time { return time.Unix(0, m.msg.Timestamp) }

func (m *nsqMessage) Ack(context.Context) error {
	m.msg.Finish()
	return nil
}

func (m *nsqMessage) Nack(context.Context) error {
	m.msg.Requeue(-1)
	return nil
}
