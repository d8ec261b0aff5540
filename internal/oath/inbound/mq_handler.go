package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gooath/internal/oath/usecase"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/messaging"
	"github.com/shandysiswandi/gooath/internal/pkg/uid"
	"github.com/shandysiswandi/gooath/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc        ucCredential
	uuid      uid.StringID
	ins       instrument.Instrumentation
	publisher messaging.Publisher
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cid := messaging.HeaderValue(msg, keyOfCorrelationID); cid != "" {
		return instrument.SetCorrelationID(ctx, cid)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// Command runs a credential action requested over the broker and publishes
// its outcome. Malformed or invalid commands are dropped; only infrastructure
// failures are returned so the broker can redeliver.
func (h *MQHandler) Command(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("oath.inbound.mq").Start(ctx, "Command")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: oath command", "msg_body", string(body))

	var payload event.OATHCommandMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of oath command", "msg_body", string(body), "error", err)
		return nil
	}

	result := event.OATHCommandResultMessage{
		Action:     payload.Action,
		DeviceID:   payload.DeviceID,
		Credential: payload.Credential,
	}

	evt, err := h.uc.RunCredentialAction(ctx, usecase.CredentialInput{
		DeviceID:       payload.DeviceID,
		CredentialID:   payload.Credential,
		Action:         payload.Action,
		FallbackToCopy: payload.FallbackToCopy,
	})

	var gerr *goerror.Error
	switch {
	case err == nil:
		result.Success = evt.Success
		result.Error = evt.Error
	case errors.As(err, &gerr) && gerr.Type() != goerror.TypeServer:
		slog.WarnContext(ctx, "oath command rejected", "msg_body", string(body), "error", err)
		result.Error = gerr.Msg()
	default:
		slog.ErrorContext(ctx, "failed to run oath command", "msg_body", string(body), "error", err)
		return err
	}

	h.publishResult(ctx, result)
	return nil
}

func (h *MQHandler) publishResult(ctx context.Context, result event.OATHCommandResultMessage) {
	body, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal oath command result", "error", err)
		return
	}

	if _, err := h.publisher.Publish(ctx, event.OATHCommandResultDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(result.DeviceID),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))}},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish oath command result", "error", err)
	}
}
