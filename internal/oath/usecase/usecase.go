package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/registry"
	"github.com/shandysiswandi/gooath/internal/pkg/clock"
	"github.com/shandysiswandi/gooath/internal/pkg/config"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const defaultOperationTimeout = 30 * time.Second

// loop runs functions on the goroutine that owns the object tree.
type loop interface {
	Call(ctx context.Context, fn func() error) error
}

type objectTree interface {
	Device(id string) (*registry.Device, bool)
	Credential(deviceID, credentialID string) (*registry.Credential, bool)
	ManagedObjects() map[string]entity.InterfaceProperties
}

type Usecase struct {
	loop      loop
	tree      objectTree
	hub       *Hub
	validator validator.Validator
	ins       instrument.Instrumentation
	opTimeout time.Duration
}

type Dependency struct {
	Loop       loop
	Tree       objectTree
	Hub        *Hub
	Config     config.Config
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func NewOATH(dep Dependency) *Usecase {
	timeout := defaultOperationTimeout
	if dep.Config != nil {
		if v := dep.Config.GetSecond("oath.operation_timeout_seconds"); v > 0 {
			timeout = v
		}
	}

	hub := dep.Hub
	if hub == nil {
		hub = NewHub(dep.Clock)
	}

	return &Usecase{
		loop:      dep.Loop,
		tree:      dep.Tree,
		hub:       hub,
		validator: dep.Validator,
		ins:       dep.Instrument,
		opTimeout: timeout,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("oath.usecase").Start(ctx, name)
}

// onLoop runs fn on the event loop and maps loop failures to server errors.
func (s *Usecase) onLoop(ctx context.Context, fn func() error) error {
	err := s.loop.Call(ctx, fn)
	if err == nil {
		return nil
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return goerror.NewTimeout("Request canceled before the device answered")
	}

	slog.ErrorContext(ctx, "failed to run on event loop", "error", err)
	return goerror.NewServer(err)
}

func errDeviceNotFound() error {
	return goerror.NewBusiness("Device not found", goerror.CodeNotFound)
}

func errCredentialNotFound() error {
	return goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
}

// mapBackendError converts backend sentinels to API errors.
func mapBackendError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, entity.ErrDeviceNotFound):
		return errDeviceNotFound()
	case errors.Is(err, entity.ErrDeviceNotConnected):
		return goerror.NewBusiness("Device is not connected", goerror.CodeUnavailable)
	case errors.Is(err, entity.ErrPasswordRequired):
		return goerror.NewBusiness("Device password required", goerror.CodeLocked)
	case errors.Is(err, entity.ErrWrongPassword):
		return goerror.NewInvalidInput(nil, "password", "Wrong password")
	case errors.Is(err, registry.ErrBlankName):
		return goerror.NewInvalidInput(nil, "name", "Name must not be blank")
	default:
		slog.ErrorContext(ctx, "failed to "+op, "error", err)
		return goerror.NewServer(err)
	}
}
