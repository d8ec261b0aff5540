package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/objectbus"
	"github.com/shandysiswandi/gooath/internal/pkg/signal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNoPath is returned when an object is registered before its path is set.
	ErrNoPath = errors.New("registry: object path is empty")
	// ErrAlreadyRegistered is returned when the path of a published object is changed.
	ErrAlreadyRegistered = errors.New("registry: object already registered")
	// ErrBlankName is returned when a device is renamed to an empty name.
	ErrBlankName = errors.New("registry: device name must not be blank")
)

// DefaultRootPath is used when Dependency.RootPath is empty.
const DefaultRootPath = "/gooath/oath"

// Object kinds reported by the oath.registry.objects counter.
const (
	kindDevice     = "device"
	kindCredential = "credential"
)

// Dependency wires a Manager.
type Dependency struct {
	RootPath   string
	Bus        objectbus.Bus
	Backend    Backend
	Executor   Executor
	Instrument instrument.Instrumentation
}

// Manager is the root of the object tree. It owns one Device per backend
// device and keeps the tree in sync with backend events.
//
// A Manager is not safe for concurrent use; every call, including the
// backend signal handlers, has to happen on the event loop.
type Manager struct {
	ctx       context.Context
	rootPath  string
	bus       objectbus.Bus
	backend   Backend
	executor  Executor
	listeners []Listener

	devices    map[string]*Device
	conns      []*signal.Connection
	registered bool

	published  metric.Int64UpDownCounter
	operations metric.Int64Counter
}

// NewManager builds an unstarted Manager.
func NewManager(dep Dependency) *Manager {
	root := dep.RootPath
	if root == "" {
		root = DefaultRootPath
	}

	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}
	meter := ins.Meter("oath.registry")

	published, err := meter.Int64UpDownCounter("oath.registry.objects", metric.WithDescription("Number of published device and credential objects"))
	if err != nil {
		slog.Error("failed to create published objects counter", "error", err)
	}
	operations, err := meter.Int64Counter("oath.registry.operations", metric.WithDescription("Number of credential operations started"))
	if err != nil {
		slog.Error("failed to create operations counter", "error", err)
	}

	return &Manager{
		ctx:        context.Background(),
		rootPath:   root,
		bus:        dep.Bus,
		backend:    dep.Backend,
		executor:   dep.Executor,
		devices:    make(map[string]*Device),
		published:  published,
		operations: operations,
	}
}

// AddListener subscribes l to tree changes. Listeners added after Start
// only see later changes.
func (m *Manager) AddListener(l Listener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// Path is the root object path.
func (m *Manager) Path() string {
	return m.rootPath
}

// Start registers the root object, subscribes to backend events and
// publishes every device the backend already knows about. A registration
// failure of the root is returned; the caller should treat it as fatal.
func (m *Manager) Start(ctx context.Context) error {
	if m.registered {
		return nil
	}
	m.ctx = context.WithoutCancel(ctx)

	if err := m.bus.Register(m.rootPath, m); err != nil {
		return fmt.Errorf("registry: register root %s: %w", m.rootPath, err)
	}
	m.registered = true

	sig := m.backend.Signals()
	m.conns = append(m.conns,
		sig.DeviceConnected.Connect(m.onDeviceConnected),
		sig.DeviceDisconnected.Connect(m.onDeviceDisconnected),
		sig.DeviceForgotten.Connect(m.onDeviceForgotten),
		sig.CredentialsUpdated.Connect(m.onCredentialsUpdated),
	)

	for _, rec := range m.backend.ListDevices() {
		m.addDevice(rec)
	}

	slog.InfoContext(ctx, "oath registry started", "root", m.rootPath, "devices", len(m.devices))

	return nil
}

// Close tears the whole tree down, children before parents.
func (m *Manager) Close() {
	for _, c := range m.conns {
		c.Disconnect()
	}
	m.conns = nil

	for _, id := range m.deviceIDs() {
		m.devices[id].destroy()
		delete(m.devices, id)
	}

	if m.registered {
		m.bus.Unregister(m.rootPath)
		m.registered = false
	}
}

// Device returns the published device with the given id.
func (m *Manager) Device(id string) (*Device, bool) {
	d, ok := m.devices[id]
	return d, ok
}

// Devices returns the published devices ordered by id.
func (m *Manager) Devices() []*Device {
	out := make([]*Device, 0, len(m.devices))
	for _, id := range m.deviceIDs() {
		out = append(out, m.devices[id])
	}
	return out
}

// Credential returns a published credential by device id and credential
// identifier (the encoded name).
func (m *Manager) Credential(deviceID, credentialID string) (*Credential, bool) {
	d, ok := m.devices[deviceID]
	if !ok {
		return nil, false
	}
	return d.Credential(credentialID)
}

// ManagedObjects lists every published device and credential with its
// interfaces and properties, keyed by path.
func (m *Manager) ManagedObjects() map[string]entity.InterfaceProperties {
	out := make(map[string]entity.InterfaceProperties)
	for _, d := range m.devices {
		out[d.Path()] = d.Properties()
		for _, c := range d.credentials {
			out[c.Path()] = c.Properties()
		}
	}
	return out
}

func (m *Manager) deviceIDs() []string {
	ids := make([]string, 0, len(m.devices))
	for id := range m.devices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Manager) devicePath(id string) string {
	return objectbus.Join(m.rootPath, "devices", id)
}

func (m *Manager) addDevice(rec entity.DeviceRecord) *Device {
	d := newDevice(m, rec)
	if err := d.register(); err != nil {
		slog.ErrorContext(m.ctx, "failed to register device object", "device_id", rec.ID, "path", d.Path(), "error", err)
		return nil
	}

	m.devices[rec.ID] = d
	m.emitAdded(d.Path(), d.Properties())

	if rec.Connected {
		d.SyncCredentials(m.backend.Credentials(rec.ID))
	}

	return d
}

func (m *Manager) onDeviceConnected(id string) {
	rec, ok := m.backend.Device(id)
	if !ok {
		slog.WarnContext(m.ctx, "connected device unknown to backend", "device_id", id)
		return
	}
	rec.Connected = true

	d, exists := m.devices[id]
	if !exists {
		slog.InfoContext(m.ctx, "device connected", "device_id", id)
		m.addDevice(rec)
		return
	}

	wasConnected := d.Connected()
	d.refresh(rec)

	if wasConnected {
		d.SyncCredentials(m.backend.Credentials(id))
		return
	}

	// Clients may have dropped the device when it went away, so announce it
	// again before its credentials.
	slog.InfoContext(m.ctx, "device reconnected", "device_id", id)
	m.emitAdded(d.Path(), d.Properties())

	before := d.credentialIDs()
	d.SyncCredentials(m.backend.Credentials(id))
	for _, cid := range before {
		if c, ok := d.credentials[cid]; ok {
			m.emitAdded(c.Path(), c.Properties())
		}
	}
}

func (m *Manager) onDeviceDisconnected(id string) {
	d, ok := m.devices[id]
	if !ok {
		return
	}

	slog.InfoContext(m.ctx, "device disconnected", "device_id", id)
	d.SetConnected(false)
	d.SyncCredentials(nil)
}

func (m *Manager) onDeviceForgotten(id string) {
	d, ok := m.devices[id]
	if !ok {
		return
	}

	slog.InfoContext(m.ctx, "device forgotten", "device_id", id)
	for _, cid := range d.credentialIDs() {
		d.removeCredential(cid)
	}

	d.destroy()
	delete(m.devices, id)
	m.emitRemoved(d.Path(), []string{entity.InterfaceDevice, entity.InterfaceSession})
}

func (m *Manager) onCredentialsUpdated(id string) {
	d, ok := m.devices[id]
	if !ok || !d.Connected() {
		return
	}
	d.SyncCredentials(m.backend.Credentials(id))
}

// countPublished tracks bus registrations; republishing an object that
// stayed registered does not count.
func (m *Manager) countPublished(kind string, delta int64) {
	if m.published != nil {
		m.published.Add(m.ctx, delta, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (m *Manager) emitAdded(path string, ifaces entity.InterfaceProperties) {
	for _, l := range m.listeners {
		l.ObjectAdded(path, ifaces)
	}
}

func (m *Manager) emitRemoved(path string, ifaces []string) {
	for _, l := range m.listeners {
		l.ObjectRemoved(path, ifaces)
	}
}

func (m *Manager) emitPropertiesChanged(path, iface string, changed entity.Properties) {
	for _, l := range m.listeners {
		l.PropertiesChanged(path, iface, changed)
	}
}

func (m *Manager) emitCredentialSignal(path string, evt entity.CredentialEvent) {
	for _, l := range m.listeners {
		l.CredentialSignal(path, evt)
	}
}

func (m *Manager) countOperation(kind entity.CredentialEventKind) {
	if m.operations != nil {
		m.operations.Add(m.ctx, 1, metric.WithAttributes(attribute.String("operation", string(kind))))
	}
}
