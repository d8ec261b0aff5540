package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/messaging"
	"github.com/shandysiswandi/gooath/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

type fakeClient struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []messaging.OutgoingMessage
	dests    []string
}

func (f *fakeClient) Publish(_ context.Context, dest string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failures > 0 {
		f.failures--
		return messaging.PublishResult{}, errors.New("broker unavailable")
	}
	f.sent = append(f.sent, msg)
	f.dests = append(f.dests, dest)
	return messaging.PublishResult{Topic: dest}, nil
}

func (f *fakeClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestPublisher(client *fakeClient) *Publisher {
	p := NewPublisher(Dependency{Client: client, Clock: fixedClock{}, Instrument: instrument.NewNoop()})
	p.backoff = time.Millisecond
	return p
}

func run(t *testing.T, p *Publisher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = p.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestPublisher_PublishesEventsInOrder(t *testing.T) {
	client := &fakeClient{}
	p := newTestPublisher(client)

	p.ObjectAdded("/gooath/oath/devices/a", entity.InterfaceProperties{entity.InterfaceDevice: {"Name": "Key"}})
	p.ObjectAdded("/gooath/oath/devices/a", entity.InterfaceProperties{entity.InterfaceDevice: {"Name": "Key"}})
	p.CredentialSignal("/gooath/oath/devices/a/credentials/x", entity.CredentialEvent{Kind: entity.CredentialDeleted, Success: true})
	p.ObjectRemoved("/gooath/oath/devices/a", []string{entity.InterfaceDevice})
	p.Notify(entity.Notification{ID: 1, Kind: entity.NotificationTouchRequired})
	run(t, p)

	require.Eventually(t, func() bool { return client.sentCount() == 5 }, 2*time.Second, 5*time.Millisecond)

	client.mu.Lock()
	defer client.mu.Unlock()

	assert.Equal(t, event.OATHObjectEventsDestination, client.dests[0])
	assert.Equal(t, []byte("/gooath/oath/devices/a"), client.sent[0].Key)
	assert.Equal(t, []messaging.Header{{Key: "type", Value: []byte(entity.EventObjectAdded)}}, client.sent[0].Headers)

	var reasons []string
	for _, msg := range client.sent[:2] {
		var evt entity.ObjectEvent
		require.NoError(t, json.Unmarshal(msg.Body, &evt))
		reasons = append(reasons, evt.Reason)
	}
	assert.Equal(t, []string{entity.ReasonConnected, entity.ReasonReconnected}, reasons)

	var last entity.ObjectEvent
	require.NoError(t, json.Unmarshal(client.sent[4].Body, &last))
	assert.Equal(t, entity.EventNotification, last.Type)
	require.NotNil(t, last.Notification)
	assert.Equal(t, uint32(1), last.Notification.ID)
}

func TestPublisher_RetriesUntilBrokerAccepts(t *testing.T) {
	client := &fakeClient{failures: 2}
	p := newTestPublisher(client)
	run(t, p)

	p.PropertiesChanged("/p", entity.InterfaceDevice, entity.Properties{"Name": "x"})

	require.Eventually(t, func() bool { return client.sentCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	client.mu.Lock()
	assert.Equal(t, 3, client.calls)
	client.mu.Unlock()
}

func TestPublisher_DropsWhenQueueFull(t *testing.T) {
	p := newTestPublisher(&fakeClient{})
	p.queue = make(chan entity.ObjectEvent, 1)

	p.ObjectRemoved("/a", nil)
	p.ObjectRemoved("/b", nil)
	p.ObjectRemoved("/c", nil)

	assert.Equal(t, uint64(2), p.Dropped())
}
