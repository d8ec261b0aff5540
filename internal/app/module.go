package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gooath/internal/oath"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.oath.enabled") {
		return
	}

	mod, err := oath.New(oath.Dependency{
		Ctx:        a.ctx,
		Loop:       a.loop,
		Bus:        a.bus,
		DB:         a.db,
		Sealer:     a.sealer,
		Messaging:  a.messaging,
		Router:     a.router,
		Goroutine:  a.goroutine,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		Clock:      a.clock,
		OTP:        a.otp,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module oath", "error", err)
		os.Exit(1)
	}

	a.oath = mod
}
