package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/registry"
	"github.com/shandysiswandi/gooath/internal/pkg/eventloop"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/objectbus"
	"github.com/shandysiswandi/gooath/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

// stubBackend answers code and delete requests through the loop, like a
// real backend finishing work on a worker.
type stubBackend struct {
	loop *eventloop.Loop
	sig  entity.BackendSignals

	mu       sync.Mutex
	devices  map[string]entity.DeviceRecord
	creds    map[string][]entity.CredentialRecord
	silent   bool
	codeErr  string
	password string
	err      error
}

func (b *stubBackend) Signals() *entity.BackendSignals { return &b.sig }

func (b *stubBackend) ListDevices() []entity.DeviceRecord {
	out := make([]entity.DeviceRecord, 0, len(b.devices))
	for _, d := range b.devices {
		out = append(out, d)
	}
	return out
}

func (b *stubBackend) Device(id string) (entity.DeviceRecord, bool) {
	d, ok := b.devices[id]
	return d, ok
}

func (b *stubBackend) Credentials(deviceID string) []entity.CredentialRecord {
	return b.creds[deviceID]
}

func (b *stubBackend) GenerateCode(deviceID, name string) {
	if b.silent {
		return
	}
	res := entity.CodeResult{DeviceID: deviceID, CredentialName: name, Err: b.codeErr}
	if b.codeErr == "" {
		res.Code = "123456"
		res.ValidUntil = time.Unix(1800000030, 0)
	}
	b.loop.Post(func() { b.sig.CodeGenerated.Emit(res) })
}

func (b *stubBackend) DeleteCredential(deviceID, name string) {
	b.loop.Post(func() {
		b.sig.CredentialDeleted.Emit(entity.DeleteResult{DeviceID: deviceID, CredentialName: name})
		var left []entity.CredentialRecord
		for _, c := range b.creds[deviceID] {
			if c.Name != name {
				left = append(left, c)
			}
		}
		b.creds[deviceID] = left
		b.sig.CredentialsUpdated.Emit(deviceID)
	})
}

func (b *stubBackend) AddCredential(_ context.Context, deviceID string, in entity.AddCredentialInput) entity.AddCredentialResult {
	if in.Name == "" || in.Secret == "" {
		return entity.AddCredentialResult{Status: entity.AddCredentialInteractive}
	}
	for _, c := range b.creds[deviceID] {
		if c.Name == in.Name {
			return entity.AddCredentialResult{Status: entity.AddCredentialError, Message: "Credential already exists"}
		}
	}
	b.creds[deviceID] = append(b.creds[deviceID], entity.CredentialRecord{Name: in.Name, DeviceID: deviceID, Type: in.Type})
	b.loop.Post(func() { b.sig.CredentialsUpdated.Emit(deviceID) })
	return entity.AddCredentialResult{Status: entity.AddCredentialSuccess, Message: in.Name}
}

func (b *stubBackend) SavePassword(_ context.Context, _, password string) error {
	if b.err != nil {
		return b.err
	}
	if password != b.password {
		return entity.ErrWrongPassword
	}
	return nil
}

func (b *stubBackend) ChangePassword(context.Context, string, string, string) error { return b.err }

func (b *stubBackend) ForgetDevice(_ context.Context, id string) error {
	if b.err != nil {
		return b.err
	}
	b.loop.Post(func() {
		delete(b.devices, id)
		b.sig.DeviceForgotten.Emit(id)
	})
	return nil
}

func (b *stubBackend) SetDeviceName(context.Context, string, string) error { return b.err }

type nopExecutor struct {
	copied    []string
	announced []string
}

func (e *nopExecutor) CopyCode(_ context.Context, code string) error {
	e.copied = append(e.copied, code)
	return nil
}

func (e *nopExecutor) TypeCode(context.Context, string) error {
	return errors.New("no display")
}

func (e *nopExecutor) ShowTouchNotification(context.Context, string, string) uint32 { return 1 }

func (e *nopExecutor) CloseTouchNotification(context.Context, uint32) {}

func (e *nopExecutor) ShowCodeNotification(_ context.Context, code, _, _ string) {
	e.announced = append(e.announced, code)
}

type fixture struct {
	loop    *eventloop.Loop
	backend *stubBackend
	exec    *nopExecutor
	hub     *Hub
	uc      *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := eventloop.New()
	go func() { _ = loop.Run(ctx) }()

	f := &fixture{
		loop: loop,
		backend: &stubBackend{
			loop: loop,
			devices: map[string]entity.DeviceRecord{
				"dev1": {ID: "dev1", Name: "Work key", Connected: true, Model: "YubiKey 5C"},
			},
			creds: map[string][]entity.CredentialRecord{
				"dev1": {{Name: "GitHub:alice", DeviceID: "dev1", Type: entity.OathTypeTOTP}},
			},
			password: "hunter2",
		},
		exec: &nopExecutor{},
		hub:  NewHub(nil),
	}

	mgr := registry.NewManager(registry.Dependency{
		Bus:        objectbus.NewMemory(),
		Backend:    f.backend,
		Executor:   f.exec,
		Instrument: instrument.NewNoop(),
	})
	mgr.AddListener(f.hub)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f.uc = NewOATH(Dependency{
		Loop:       loop,
		Tree:       mgr,
		Hub:        f.hub,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})
	f.uc.opTimeout = time.Second

	require.NoError(t, loop.Call(ctx, func() error { return mgr.Start(ctx) }))
	t.Cleanup(func() {
		_ = loop.Call(context.Background(), func() error { mgr.Close(); return nil })
		cancel()
		<-loop.Done()
	})

	return f
}

// onLoop runs fn on the loop so test code can touch backend state safely.
func (f *fixture) onLoop(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, f.loop.Call(context.Background(), func() error { fn(); return nil }))
}

const (
	devPath  = registry.DefaultRootPath + "/devices/dev1"
	credPath = devPath + "/credentials/github_colon_alice"
)

func credInput() CredentialInput {
	return CredentialInput{DeviceID: "dev1", CredentialID: "github_colon_alice"}
}

