package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig configures the NATS driver.
type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS is a core NATS client. Core NATS has no redelivery, so Ack is a no-op.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed bool
}

// NewNATS connects to the NATS server at cfg.URL.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, errors.New("messaging: nats url is required")
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

// Close drains subscriptions and the connection.
func (n *NATS) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	subs := n.subs
	n.subs = nil
	n.mu.Unlock()

	var err error
	for _, sub := range subs {
		err = errors.Join(err, sub.Drain())
	}
	err = errors.Join(err, n.conn.Drain())
	n.conn.Close()
	return err
}

// Publish sends msg to a subject and flushes.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	nmsg := nats.NewMsg(destination)
	nmsg.Data = msg.Body
	for _, h := range msg.Headers {
		if h.Key != "" {
			nmsg.Header.Add(h.Key, string(h.Value))
		}
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.Flush(); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats flush: %w", err)
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Consume queue-subscribes to a subject until ctx is done.
func (n *NATS) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	co := newConsumeOptions(opts...)
	concurrency := concurrencyOrDefault(co.concurrency, 1)

	msgCh := make(chan *nats.Msg, concurrency)
	sub, err := n.conn.QueueSubscribe(source, co.queueGroup, func(m *nats.Msg) {
		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return errors.Join(ErrClosed, sub.Unsubscribe())
	}
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	var wg sync.WaitGroup
	for range concurrency {
		wg.Go(func() {
			for m := range msgCh {
				wrapped := &natsMessage{msg: m, received: time.Now()}
				herr := callHandlerWithRecover(ctx, "nats", func() error { return handler(ctx, wrapped) })
				_ = finish(ctx, wrapped, co.autoAck, herr)
			}
		})
	}

	<-ctx.Done()
	derr := sub.Drain()
	close(msgCh)
	wg.Wait()
	return errors.Join(ctx.Err(), derr)
}

type natsMessage struct {
	msg      *nats.Msg
	received time.Time
}

func (m *natsMessage) Body() []byte { return m.msg.Data }

func (m *natsMessage) Key() []byte { return nil }

func (m *natsMessage) Headers() []Header {
	var out []Header
	for k, vs := range m.msg.Header {
		for _, v := range vs {
			out = append(out, Header{Key: k, Value: []byte(v)})
		}
	}
	return out
}

func (m *natsMessage) ID() string { return m.msg.Header.Get(nats.MsgIdHdr) }

func (m *natsMessage) Topic() string { return m.msg.Subject }

func (m *natsMessage) Timestamp() time.Time { return m.received }

func (m *natsMessage) Ack(context.Context) error { return nil }
