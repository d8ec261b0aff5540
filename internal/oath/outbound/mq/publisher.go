// Package mq mirrors the object tree changes onto the message broker.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/clock"
	"github.com/shandysiswandi/gooath/internal/pkg/config"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/messaging"
	"github.com/shandysiswandi/gooath/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
)

const (
	defaultBuffer     = 256
	defaultMaxRetries = 5
	headerEventType   = "type"
)

type Dependency struct {
	Client     messaging.Publisher
	Config     config.Config
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

// Publisher is a registry listener that forwards every object event to
// the oath_object_events destination. Callbacks only enqueue; Run does the
// network work so the event loop never waits on the broker.
type Publisher struct {
	client     messaging.Publisher
	ins        instrument.Instrumentation
	tracker    *entity.ObjectTracker
	queue      chan entity.ObjectEvent
	maxRetries uint64
	backoff    time.Duration
	dropped    atomic.Uint64
}

func NewPublisher(dep Dependency) *Publisher {
	size, retries := defaultBuffer, uint64(defaultMaxRetries)
	if dep.Config != nil {
		if v := dep.Config.GetInt("messaging.publish_buffer"); v > 0 {
			size = v
		}
		if v := dep.Config.GetInt("messaging.publish_max_retries"); v > 0 {
			retries = uint64(v)
		}
	}

	clk := dep.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Publisher{
		client:     dep.Client,
		ins:        dep.Instrument,
		tracker:    entity.NewObjectTracker(clk),
		queue:      make(chan entity.ObjectEvent, size),
		maxRetries: retries,
		backoff:    200 * time.Millisecond,
	}
}

// Dropped counts events discarded because the queue was full.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

func (p *Publisher) ObjectAdded(path string, ifaces entity.InterfaceProperties) {
	p.enqueue(p.tracker.Added(path, ifaces))
}

func (p *Publisher) ObjectRemoved(path string, ifaces []string) {
	p.enqueue(p.tracker.Removed(path, ifaces))
}

func (p *Publisher) PropertiesChanged(path, iface string, changed entity.Properties) {
	p.enqueue(p.tracker.Changed(path, iface, changed))
}

func (p *Publisher) CredentialSignal(path string, evt entity.CredentialEvent) {
	p.enqueue(p.tracker.Signal(path, evt))
}

func (p *Publisher) Notify(n entity.Notification) {
	p.enqueue(p.tracker.Notification(n))
}

func (p *Publisher) enqueue(evt entity.ObjectEvent) {
	select {
	case p.queue <- evt:
	default:
		p.dropped.Inc()
		slog.Warn("object event queue full, dropping event", "type", evt.Type, "path", evt.Path)
	}
}

// Run publishes queued events in order until ctx ends.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-p.queue:
			if err := p.publish(ctx, evt); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "failed to publish object event", "type", evt.Type, "path", evt.Path, "error", err)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, evt entity.ObjectEvent) error {
	ctx, span := p.ins.Tracer("oath.outbound.mq").Start(ctx, "PublishObjectEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event.type", evt.Type), attribute.String("event.path", evt.Path))

	body, err := json.Marshal(evt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	msg := messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(evt.Path),
		Headers: []messaging.Header{{Key: headerEventType, Value: []byte(evt.Type)}},
	}

	b := retry.WithMaxRetries(p.maxRetries, retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(p.backoff)))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if _, err := p.client.Publish(ctx, event.OATHObjectEventsDestination, msg); err != nil {
			if errors.Is(err, messaging.ErrClosed) {
				return err
			}
			slog.WarnContext(ctx, "publish object event failed, retrying", "type", evt.Type, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
