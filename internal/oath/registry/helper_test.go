package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/objectbus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const root = "/gooath/oath"

type fakeBackend struct {
	sig     entity.BackendSignals
	order   []string
	devices map[string]entity.DeviceRecord
	creds   map[string][]entity.CredentialRecord

	generated []string
	deleted   []string
	err       error
	addResult entity.AddCredentialResult
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		devices: make(map[string]entity.DeviceRecord),
		creds:   make(map[string][]entity.CredentialRecord),
	}
}

func (f *fakeBackend) putDevice(rec entity.DeviceRecord, names ...string) {
	if _, ok := f.devices[rec.ID]; !ok {
		f.order = append(f.order, rec.ID)
	}
	f.devices[rec.ID] = rec
	f.setCreds(rec.ID, names...)
}

func (f *fakeBackend) setCreds(deviceID string, names ...string) {
	recs := make([]entity.CredentialRecord, 0, len(names))
	for _, n := range names {
		recs = append(recs, credRecord(deviceID, n, false))
	}
	f.creds[deviceID] = recs
}

func credRecord(deviceID, name string, touch bool) entity.CredentialRecord {
	return entity.CredentialRecord{
		Name:          name,
		Type:          entity.OathTypeTOTP,
		Algorithm:     entity.AlgorithmSHA1,
		Digits:        6,
		Period:        30,
		RequiresTouch: touch,
		DeviceID:      deviceID,
	}
}

func (f *fakeBackend) Signals() *entity.BackendSignals { return &f.sig }

func (f *fakeBackend) ListDevices() []entity.DeviceRecord {
	out := make([]entity.DeviceRecord, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.devices[id])
	}
	return out
}

func (f *fakeBackend) Device(id string) (entity.DeviceRecord, bool) {
	rec, ok := f.devices[id]
	return rec, ok
}

func (f *fakeBackend) Credentials(deviceID string) []entity.CredentialRecord {
	return slices.Clone(f.creds[deviceID])
}

func (f *fakeBackend) GenerateCode(deviceID, credentialName string) {
	f.generated = append(f.generated, deviceID+"/"+credentialName)
}

func (f *fakeBackend) DeleteCredential(deviceID, credentialName string) {
	f.deleted = append(f.deleted, deviceID+"/"+credentialName)
}

func (f *fakeBackend) AddCredential(_ context.Context, _ string, _ entity.AddCredentialInput) entity.AddCredentialResult {
	return f.addResult
}

func (f *fakeBackend) SavePassword(context.Context, string, string) error { return f.err }

func (f *fakeBackend) ChangePassword(context.Context, string, string, string) error { return f.err }

func (f *fakeBackend) ForgetDevice(context.Context, string) error { return f.err }

func (f *fakeBackend) SetDeviceName(context.Context, string, string) error { return f.err }

// recordingListener flattens tree changes into readable lines.
type recordingListener struct {
	events  []string
	changes []entity.Properties
	signals []entity.CredentialEvent
}

func (r *recordingListener) ObjectAdded(path string, _ entity.InterfaceProperties) {
	r.events = append(r.events, "added "+path)
}

func (r *recordingListener) ObjectRemoved(path string, _ []string) {
	r.events = append(r.events, "removed "+path)
}

func (r *recordingListener) PropertiesChanged(path, iface string, changed entity.Properties) {
	r.events = append(r.events, fmt.Sprintf("changed %s %s", path, iface))
	r.changes = append(r.changes, changed)
}

func (r *recordingListener) CredentialSignal(path string, evt entity.CredentialEvent) {
	r.events = append(r.events, fmt.Sprintf("signal %s %s", path, evt.Kind))
	r.signals = append(r.signals, evt)
}

// lifecycle keeps only the added and removed lines.
func (r *recordingListener) lifecycle() []string {
	var out []string
	for _, e := range r.events {
		if strings.HasPrefix(e, "added ") || strings.HasPrefix(e, "removed ") {
			out = append(out, e)
		}
	}
	return out
}

func (r *recordingListener) reset() {
	r.events = nil
	r.changes = nil
	r.signals = nil
}

type fixture struct {
	bus     *objectbus.Memory
	backend *fakeBackend
	exec    *MockExecutor
	events  *recordingListener
	mgr     *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newInstrumentedFixture(t, nil)
}

func newInstrumentedFixture(t *testing.T, ins instrument.Instrumentation) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		bus:     objectbus.NewMemory(),
		backend: newFakeBackend(),
		exec:    NewMockExecutor(ctrl),
		events:  &recordingListener{},
	}
	f.mgr = NewManager(Dependency{
		RootPath:   root,
		Bus:        f.bus,
		Backend:    f.backend,
		Executor:   f.exec,
		Instrument: ins,
	})
	f.mgr.AddListener(f.events)

	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.mgr.Start(context.Background()))
}

func (f *fixture) credential(t *testing.T, deviceID, id string) *Credential {
	t.Helper()
	c, ok := f.mgr.Credential(deviceID, id)
	require.True(t, ok, "credential %s/%s not published", deviceID, id)
	return c
}

func device(id string, connected bool) entity.DeviceRecord {
	return entity.DeviceRecord{
		ID:        id,
		Name:      "Token " + id,
		Connected: connected,
		Model:     "YubiKey 5 NFC",
		LastSeen:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func devPath(id string) string { return root + "/devices/" + id }

func credPath(deviceID, credID string) string { return devPath(deviceID) + "/credentials/" + credID }
