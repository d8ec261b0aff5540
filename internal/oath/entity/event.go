package entity

import (
	"time"

	"github.com/shandysiswandi/gooath/internal/pkg/clock"
)

// Object event types.
const (
	EventObjectAdded       = "object_added"
	EventObjectRemoved     = "object_removed"
	EventPropertiesChanged = "properties_changed"
	EventCredentialSignal  = "credential_signal"
	EventNotification      = "notification"
)

// Reasons attached to object_added.
const (
	ReasonConnected   = "connected"
	ReasonReconnected = "reconnected"
)

// ObjectEvent is one change of the object tree as seen by remote clients.
type ObjectEvent struct {
	Type         string              `json:"type"`
	Path         string              `json:"path,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	Interfaces   InterfaceProperties `json:"interfaces,omitempty"`
	Removed      []string            `json:"removed_interfaces,omitempty"`
	Interface    string              `json:"interface,omitempty"`
	Changed      Properties          `json:"changed,omitempty"`
	Signal       *CredentialEvent    `json:"signal,omitempty"`
	Notification *Notification       `json:"notification,omitempty"`
	At           time.Time           `json:"at"`
}

// ObjectTracker turns listener callbacks into ObjectEvents. A path added
// again without being removed in between is reported as reconnected, so
// clients can tell a republication from a new object.
//
// It is not safe for concurrent use; callers feed it from the event loop.
type ObjectTracker struct {
	clock clock.Clocker
	live  map[string]struct{}
}

func NewObjectTracker(c clock.Clocker) *ObjectTracker {
	return &ObjectTracker{clock: c, live: make(map[string]struct{})}
}

func (t *ObjectTracker) Added(path string, ifaces InterfaceProperties) ObjectEvent {
	reason := ReasonConnected
	if _, ok := t.live[path]; ok {
		reason = ReasonReconnected
	}
	t.live[path] = struct{}{}
	return ObjectEvent{Type: EventObjectAdded, Path: path, Reason: reason, Interfaces: ifaces, At: t.clock.Now()}
}

func (t *ObjectTracker) Removed(path string, ifaces []string) ObjectEvent {
	delete(t.live, path)
	return ObjectEvent{Type: EventObjectRemoved, Path: path, Removed: ifaces, At: t.clock.Now()}
}

func (t *ObjectTracker) Changed(path, iface string, changed Properties) ObjectEvent {
	return ObjectEvent{Type: EventPropertiesChanged, Path: path, Interface: iface, Changed: changed, At: t.clock.Now()}
}

func (t *ObjectTracker) Signal(path string, evt CredentialEvent) ObjectEvent {
	return ObjectEvent{Type: EventCredentialSignal, Path: path, Signal: &evt, At: t.clock.Now()}
}

func (t *ObjectTracker) Notification(n Notification) ObjectEvent {
	return ObjectEvent{Type: EventNotification, Notification: &n, At: t.clock.Now()}
}
