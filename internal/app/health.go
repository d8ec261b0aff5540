package app

import (
	"context"
	"time"

	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/router"
)

type healthResponse struct {
	Status            string `json:"status"`
	Objects           int    `json:"objects"`
	StreamSubscribers int    `json:"stream_subscribers"`
}

func (healthResponse) Message() string { return "service is healthy" }

// health also proves the event loop still picks up work.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	var objects int
	if err := a.loop.Call(ctx, func() error {
		objects = len(a.bus.Paths())
		return nil
	}); err != nil {
		return nil, goerror.NewBusiness("Event loop is not responding", goerror.CodeUnavailable)
	}

	resp := healthResponse{Status: "ok", Objects: objects}
	if a.oath != nil {
		resp.StreamSubscribers = a.oath.Subscribers()
	}

	return resp, nil
}
