package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gooath/internal/oath"
	"github.com/shandysiswandi/gooath/internal/oath/outbound/sqlite"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.OTP
	sealer    sealer.Sealer

	// resources
	loop      *eventloop.Loop
	stopLoop  context.CancelFunc
	bus       *objectbus.Memory
	db        *sqlite.DB
	messaging messaging.Messaging

	// modules
	oath *oath.Module

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initMessaging()
	app.initEventLoop()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
