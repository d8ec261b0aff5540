// Package virtual is a software OATH backend. Tokens live in SQLite and can
// be plugged and unplugged at runtime, which makes the daemon usable without
// hardware and gives tests a real backend to drive.
//
// All state is owned by the event loop. Store writes that sit on an
// asynchronous path run on the goroutine manager and post their outcome back
// to the loop.
package virtual

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/clock"
	"github.com/shandysiswandi/gooath/internal/pkg/config"
	"github.com/shandysiswandi/gooath/internal/pkg/otp"
	"github.com/shandysiswandi/gooath/internal/pkg/uid"
)

const (
	defaultTouchTimeout = 15 * time.Second
	defaultModel        = "Virtual OATH Key"
	defaultFormFactor   = "usb-a"
	firmwareVersion     = "5.7.1"
)

type Store interface {
	CreateToken(ctx context.Context, tok entity.VirtualToken) error
	ListTokens(ctx context.Context) ([]entity.VirtualToken, error)
	SetTokenPlugged(ctx context.Context, id string, plugged bool) error
	SetTokenPasswordKey(ctx context.Context, id string, key []byte) error

	ListCredentials(ctx context.Context, tokenID string) ([]entity.StoredCredential, error)
	InsertCredential(ctx context.Context, tokenID string, sc entity.StoredCredential, at time.Time) error
	DeleteCredential(ctx context.Context, tokenID, name string) error
	SetCounter(ctx context.Context, tokenID, name string, counter uint64) error

	ListKnownDevices(ctx context.Context) ([]entity.KnownDevice, error)
	SaveKnownDevice(ctx context.Context, kd entity.KnownDevice) error
	DeleteKnownDevice(ctx context.Context, id string) error
}

type loop interface {
	Post(fn func()) bool
	Call(ctx context.Context, fn func() error) error
}

type runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error) bool
}

type Dependency struct {
	Loop      loop
	Store     Store
	Goroutine runner
	OTP       otp.OTP
	Clock     clock.Clocker
	Serial    uid.NumberID
	Config    config.Config
}

// token is the loop-owned state of one virtual token.
type token struct {
	entity.VirtualToken
	creds    []entity.StoredCredential
	unlocked bool
}

func (t *token) locked() bool {
	return len(t.PasswordKey) > 0 && !t.unlocked
}

func (t *token) credential(name string) (*entity.StoredCredential, bool) {
	for i := range t.creds {
		if t.creds[i].Record.Name == name {
			return &t.creds[i], true
		}
	}
	return nil, false
}

type Backend struct {
	ctx   context.Context
	loop  loop
	store Store
	gm    runner
	otp   otp.OTP
	clock clock.Clocker
	ids   uid.NumberID

	touchDelay   time.Duration
	touchTimeout time.Duration

	sig    entity.BackendSignals
	order  []string
	tokens map[string]*token
	known  map[string]entity.KnownDevice
}

func New(dep Dependency) *Backend {
	b := &Backend{
		ctx:          context.Background(),
		loop:         dep.Loop,
		store:        dep.Store,
		gm:           dep.Goroutine,
		otp:          dep.OTP,
		clock:        dep.Clock,
		ids:          dep.Serial,
		touchTimeout: defaultTouchTimeout,
		tokens:       make(map[string]*token),
		known:        make(map[string]entity.KnownDevice),
	}
	if b.clock == nil {
		b.clock = clock.New()
	}
	if b.otp == nil {
		b.otp = otp.New()
	}

	if dep.Config != nil {
		b.touchDelay = dep.Config.GetMillisecond("virtual.touch_delay_ms")
		if v := dep.Config.GetSecond("oath.touch_timeout_seconds"); v > 0 {
			b.touchTimeout = v
		}
	}

	return b
}

// Load reads every token, credential and known device from the store. It
// must run on the loop before the registry starts.
func (b *Backend) Load(ctx context.Context) error {
	b.ctx = context.WithoutCancel(ctx)

	known, err := b.store.ListKnownDevices(ctx)
	if err != nil {
		return err
	}
	for _, kd := range known {
		b.known[kd.ID] = kd
	}

	tokens, err := b.store.ListTokens(ctx)
	if err != nil {
		return err
	}
	for _, vt := range tokens {
		creds, err := b.store.ListCredentials(ctx, vt.ID)
		if err != nil {
			return err
		}

		t := &token{VirtualToken: vt, creds: creds}
		if vt.Plugged {
			t.unlocked = b.keyMatchesSaved(t)
		}
		b.tokens[vt.ID] = t
		b.order = append(b.order, vt.ID)
	}

	return nil
}

func (b *Backend) Signals() *entity.BackendSignals { return &b.sig }

// ListDevices returns the plugged tokens and the unplugged ones the host
// still remembers.
func (b *Backend) ListDevices() []entity.DeviceRecord {
	out := make([]entity.DeviceRecord, 0, len(b.order))
	for _, id := range b.order {
		if rec, ok := b.Device(id); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (b *Backend) Device(id string) (entity.DeviceRecord, bool) {
	t, ok := b.tokens[id]
	if !ok {
		return entity.DeviceRecord{}, false
	}
	kd, known := b.known[id]
	if !t.Plugged && !known {
		return entity.DeviceRecord{}, false
	}

	name := t.Name
	if known && kd.Name != "" {
		name = kd.Name
	}

	return entity.DeviceRecord{
		ID:               t.ID,
		Name:             name,
		Connected:        t.Plugged,
		RequiresPassword: len(t.PasswordKey) > 0,
		HasValidPassword: t.unlocked,
		FirmwareVersion:  t.FirmwareVersion,
		SerialNumber:     t.SerialNumber,
		Model:            t.Model,
		ModelCode:        t.ModelCode,
		FormFactor:       t.FormFactor,
		Capabilities:     t.Capabilities,
		LastSeen:         kd.LastSeen,
	}, true
}

// Credentials is empty while the token is unplugged or locked.
func (b *Backend) Credentials(deviceID string) []entity.CredentialRecord {
	t, ok := b.tokens[deviceID]
	if !ok || !t.Plugged || t.locked() {
		return nil
	}

	out := make([]entity.CredentialRecord, 0, len(t.creds))
	for _, sc := range t.creds {
		rec := sc.Record
		rec.DeviceID = deviceID
		out = append(out, rec)
	}
	return out
}

// post defers fn to a later loop iteration so signals never fire inside
// the call that triggered them.
func (b *Backend) post(fn func()) {
	if !b.loop.Post(fn) {
		slog.WarnContext(b.ctx, "event loop stopped, dropping virtual backend event")
	}
}
