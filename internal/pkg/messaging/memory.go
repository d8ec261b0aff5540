package messaging

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process broker. Every Consume call on a topic receives
// each message published after it subscribed.
type Memory struct {
	mu     sync.Mutex
	subs   map[string][]chan *memoryMessage
	closed bool
	seq    atomic.Uint64
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: map[string][]chan *memoryMessage{}}
}

// Close stops all consumers.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for _, chans := range m.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	m.subs = nil
	return nil
}

// Subscribers returns how many consumers are attached to topic.
func (m *Memory) Subscribers(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[topic])
}

// Publish delivers msg to every current consumer of destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return PublishResult{}, ErrClosed
	}

	seq := m.seq.Add(1)
	now := time.Now()
	for _, ch := range m.subs[destination] {
		mm := &memoryMessage{
			id:      strconv.FormatUint(seq, 10),
			topic:   destination,
			body:    append([]byte(nil), msg.Body...),
			key:     msg.Key,
			headers: append([]Header(nil), msg.Headers...),
			ts:      now,
		}
		select {
		case ch <- mm:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		}
	}
	return PublishResult{Topic: destination, Offset: int64(seq), Timestamp: now}, nil
}

// Consume handles messages on source until ctx is done or the broker closes.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	co := newConsumeOptions(opts...)

	ch := make(chan *memoryMessage, 64)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.subs[source] = append(m.subs[source], ch)
	m.mu.Unlock()
	defer m.unsubscribe(source, ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			herr := callHandlerWithRecover(ctx, "memory", func() error { return handler(ctx, msg) })
			_ = finish(ctx, msg, co.autoAck, herr)
		}
	}
}

func (m *Memory) unsubscribe(topic string, ch chan *memoryMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chans := m.subs[topic]
	for i, c := range chans {
		if c == ch {
			m.subs[topic] = append(chans[:i], chans[i+1:]...)
			return
		}
	}
}

type memoryMessage struct {
	id      string
	topic   string
	body    []byte
	key     []byte
	headers []Header
	ts      time.Time
	acked   atomic.Bool
}

func (m *memoryMessage) Body() []byte { return m.body }

func (m *memoryMessage) Key() []byte { return m.key }

func (m *memoryMessage) Headers() []Header { return m.headers }

func (m *memoryMessage) ID() string { return m.id }

func (m *memoryMessage) Topic() string { return m.topic }

func (m *memoryMessage) Timestamp() time.Time { return m.ts }

func (m *memoryMessage) Ack(context.Context) error {
	m.acked.Store(true)
	return nil
}

// Noop discards published messages and never delivers any.
type Noop struct{}

func (Noop) Close() error { return nil }

func (Noop) Publish(_ context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (Noop) Consume(ctx context.Context, _ string, _ Handler, _ ...ConsumeOption) error {
	<-ctx.Done()
	return ctx.Err()
}
