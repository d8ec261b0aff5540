package virtual

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/outbound/sqlite"
	"github.com/shandysiswandi/gooath/internal/pkg/eventloop"
	"github.com/shandysiswandi/gooath/internal/pkg/goroutine"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/otp"
	"github.com/shandysiswandi/gooath/internal/pkg/sealer"
	"github.com/stretchr/testify/require"
)

const secret = "JBSWY3DPEHPK3PXP"

var now = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return now }

type seqIDs struct{ n int64 }

func (s *seqIDs) Generate() int64 {
	s.n++
	return s.n
}

type fixture struct {
	loop   *eventloop.Loop
	store  *sqlite.Store
	gm     *goroutine.Manager
	ids    *seqIDs
	b      *Backend
	events chan string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := eventloop.New()
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	db, err := sqlite.OpenMemory(ctx, url.PathEscape(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.RunMigrations(db.Writer))

	s, err := sealer.NewAESGCM(bytes.Repeat([]byte{3}, 32))
	require.NoError(t, err)

	f := &fixture{
		loop:   loop,
		store:  sqlite.NewStore(db, s, instrument.NewNoop()),
		gm:     goroutine.NewManager(8),
		ids:    &seqIDs{},
		events: make(chan string, 64),
	}
	f.b = f.newBackend(t)

	return f
}

// newBackend builds a backend over the fixture store, loads it and records
// its signals.
func (f *fixture) newBackend(t *testing.T) *Backend {
	t.Helper()

	b := New(Dependency{
		Loop:      f.loop,
		Store:     f.store,
		Goroutine: f.gm,
		OTP:       otp.New(),
		Clock:     fixedClock{},
		Serial:    f.ids,
	})

	f.do(t, func() {
		require.NoError(t, b.Load(context.Background()))

		sig := b.Signals()
		sig.DeviceConnected.Connect(func(id string) { f.events <- "connected " + id })
		sig.DeviceDisconnected.Connect(func(id string) { f.events <- "disconnected " + id })
		sig.DeviceForgotten.Connect(func(id string) { f.events <- "forgotten " + id })
		sig.CredentialsUpdated.Connect(func(id string) { f.events <- "updated " + id })
		sig.TouchRequired.Connect(func(id string) { f.events <- "touch " + id })
		sig.CodeGenerated.Connect(func(r entity.CodeResult) {
			f.events <- fmt.Sprintf("code %s/%s %s%s", r.DeviceID, r.CredentialName, r.Code, r.Err)
		})
		sig.CredentialDeleted.Connect(func(r entity.DeleteResult) {
			f.events <- fmt.Sprintf("deleted %s/%s%s", r.DeviceID, r.CredentialName, r.Err)
		})
	})

	return b
}

// do runs fn on the loop.
func (f *fixture) do(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, f.loop.Call(context.Background(), func() error {
		fn()
		return nil
	}))
}

func (f *fixture) next(t *testing.T) string {
	t.Helper()
	select {
	case e := <-f.events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no backend event")
		return ""
	}
}

func (f *fixture) create(t *testing.T, in entity.CreateVirtualDeviceInput) string {
	t.Helper()
	tok, err := f.b.CreateDevice(context.Background(), in)
	require.NoError(t, err)
	if in.Plugged {
		require.Equal(t, "connected "+tok.ID, f.next(t))
	}
	return tok.ID
}

func (f *fixture) add(t *testing.T, id string, in entity.AddCredentialInput) entity.AddCredentialResult {
	t.Helper()
	var res entity.AddCredentialResult
	f.do(t, func() { res = f.b.AddCredential(context.Background(), id, in) })
	return res
}
