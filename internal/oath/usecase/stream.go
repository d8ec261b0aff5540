package usecase

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/clock"
	"go.uber.org/atomic"
)

const subscriberBuffer = 32

type subscriber struct {
	ch     chan entity.ObjectEvent
	closed atomic.Bool
}

// Hub fans object tree changes and touch notifications out to stream
// subscribers. Listener callbacks and Notify arrive on the event loop;
// Subscribe may be called from any goroutine.
type Hub struct {
	tracker *entity.ObjectTracker

	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	dropped atomic.Uint64
}

func NewHub(c clock.Clocker) *Hub {
	if c == nil {
		c = clock.New()
	}
	return &Hub{
		tracker: entity.NewObjectTracker(c),
		subs:    make(map[*subscriber]struct{}),
	}
}

// Subscribe returns a stream of events that is closed when ctx is done.
// A slow subscriber loses events rather than blocking the loop.
func (h *Hub) Subscribe(ctx context.Context) <-chan entity.ObjectEvent {
	sub := &subscriber{ch: make(chan entity.ObjectEvent, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, sub)
		sub.closed.Store(true)
		close(sub.ch)
		h.mu.Unlock()
	}()

	return sub.ch
}

// Subscribers returns the number of open streams.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many events were discarded for slow subscribers.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) ObjectAdded(path string, ifaces entity.InterfaceProperties) {
	h.publish(h.tracker.Added(path, ifaces))
}

func (h *Hub) ObjectRemoved(path string, ifaces []string) {
	h.publish(h.tracker.Removed(path, ifaces))
}

func (h *Hub) PropertiesChanged(path, iface string, changed entity.Properties) {
	h.publish(h.tracker.Changed(path, iface, changed))
}

func (h *Hub) CredentialSignal(path string, evt entity.CredentialEvent) {
	h.publish(h.tracker.Signal(path, evt))
}

// Notify publishes a notification raised by the action executor.
func (h *Hub) Notify(n entity.Notification) {
	h.publish(h.tracker.Notification(n))
}

func (h *Hub) publish(evt entity.ObjectEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.closed.Load() {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			h.dropped.Inc()
		}
	}
}

// Stream returns the event stream for one client.
func (s *Usecase) Stream(ctx context.Context) <-chan entity.ObjectEvent {
	return s.hub.Subscribe(ctx)
}
