package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gooath/internal/pkg/config"
	"github.com/shandysiswandi/gooath/internal/pkg/goroutine"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/messaging"
	"github.com/shandysiswandi/gooath/internal/pkg/uid"
	"github.com/shandysiswandi/gooath/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc ucCredential,
	ins instrument.Instrumentation,
) {
	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins, publisher: messenger}

	enabled := cfg.GetArray("modules.oath.consumer_names")
	concurrency := cfg.GetInt("modules.oath.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = 4
	}

	consumers := []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.OATHCommandConsumerDaemon,
			topic:   event.OATHCommandDestination,
			handler: handler.Command,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enabled, consumer.name) {
			continue
		}

		started := routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.name),
				messaging.WithQueueGroup(consumer.name),
				messaging.WithGroup(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
		if !started {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", consumer.name)
		}
	}
}
