package oath

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/gooath/internal/oath/inbound"
	"github.com/shandysiswandi/gooath/internal/oath/outbound/action"
	"github.com/shandysiswandi/gooath/internal/oath/outbound/mq"
	"github.com/shandysiswandi/gooath/internal/oath/outbound/sqlite"
	"github.com/shandysiswandi/gooath/internal/oath/outbound/virtual"
	"github.com/shandysiswandi/gooath/internal/oath/registry"
	"github.com/shandysiswandi/gooath/internal/oath/usecase"
	"github.com/shandysiswandi/gooath/internal/pkg/clock"
	"github.com/shandysiswandi/gooath/internal/pkg/config"
	"github.com/shandysiswandi/gooath/internal/pkg/eventloop"
	"github.com/shandysiswandi/gooath/internal/pkg/goroutine"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/messaging"
	"github.com/shandysiswandi/gooath/internal/pkg/objectbus"
	"github.com/shandysiswandi/gooath/internal/pkg/otp"
	"github.com/shandysiswandi/gooath/internal/pkg/router"
	"github.com/shandysiswandi/gooath/internal/pkg/sealer"
	"github.com/shandysiswandi/gooath/internal/pkg/uid"
	"github.com/shandysiswandi/gooath/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Loop       *eventloop.Loop            `validate:"required"`
	Bus        objectbus.Bus              `validate:"required"`
	DB         *sqlite.DB                 `validate:"required"`
	Sealer     sealer.Sealer              `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// Module is the running OATH daemon core.
type Module struct {
	loop    *eventloop.Loop
	manager *registry.Manager
	hub     *usecase.Hub
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	store := sqlite.NewStore(dep.DB, dep.Sealer, dep.Instrument)
	backend := virtual.New(virtual.Dependency{
		Loop:      dep.Loop,
		Store:     store,
		Goroutine: dep.Goroutine,
		OTP:       dep.OTP,
		Clock:     dep.Clock,
		Serial:    dep.UID,
		Config:    dep.Config,
	})

	hub := usecase.NewHub(dep.Clock)
	publisher := mq.NewPublisher(mq.Dependency{
		Client:     dep.Messaging,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})
	executor := action.New(action.Dependency{
		Config:    dep.Config,
		Clock:     dep.Clock,
		Notifiers: []action.Notifier{hub, publisher},
	})

	manager := registry.NewManager(registry.Dependency{
		RootPath:   dep.Config.GetString("oath.bus.root_path"),
		Bus:        dep.Bus,
		Backend:    backend,
		Executor:   executor,
		Instrument: dep.Instrument,
	})
	manager.AddListener(hub)
	manager.AddListener(publisher)

	if err := dep.Loop.Call(dep.Ctx, func() error {
		if err := backend.Load(dep.Ctx); err != nil {
			return fmt.Errorf("load virtual backend: %w", err)
		}
		return manager.Start(dep.Ctx)
	}); err != nil {
		return nil, err
	}

	dep.Goroutine.Go(dep.Ctx, publisher.Run)

	uc := usecase.NewOATH(usecase.Dependency{
		Loop:       dep.Loop,
		Tree:       manager,
		Hub:        hub,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	var control inbound.VirtualControl
	if dep.Config.GetBool("virtual.enabled") {
		control = backend
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, control)
	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return &Module{loop: dep.Loop, manager: manager, hub: hub}, nil
}

// Subscribers is the number of connected stream clients.
func (m *Module) Subscribers() int { return m.hub.Subscribers() }

// Close retracts the object tree. The loop must still be running.
func (m *Module) Close(ctx context.Context) error {
	return m.loop.Call(ctx, func() error {
		m.manager.Close()
		return nil
	})
}
