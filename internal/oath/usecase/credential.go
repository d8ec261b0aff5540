package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/registry"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
)

// Credential actions accepted by RunCredentialAction.
const (
	ActionGenerate = "generate"
	ActionCopy     = "copy"
	ActionType     = "type"
	ActionDelete   = "delete"
)

type CredentialInput struct {
	DeviceID       string `validate:"required"`
	CredentialID   string `validate:"required"`
	Action         string `validate:"required,oneof=generate copy type delete"`
	FallbackToCopy bool
}

func (s *Usecase) GenerateCode(ctx context.Context, in CredentialInput) (*entity.CredentialEvent, error) {
	in.Action = ActionGenerate
	return s.RunCredentialAction(ctx, in)
}

func (s *Usecase) CopyCode(ctx context.Context, in CredentialInput) (*entity.CredentialEvent, error) {
	in.Action = ActionCopy
	return s.RunCredentialAction(ctx, in)
}

func (s *Usecase) TypeCode(ctx context.Context, in CredentialInput) (*entity.CredentialEvent, error) {
	in.Action = ActionType
	return s.RunCredentialAction(ctx, in)
}

func (s *Usecase) DeleteCredential(ctx context.Context, in CredentialInput) (*entity.CredentialEvent, error) {
	in.Action = ActionDelete
	return s.RunCredentialAction(ctx, in)
}

// RunCredentialAction starts an operation on a credential and waits for its
// result. A failed operation is returned as an event with Success false.
// When the result does not arrive in time a timeout error is returned and
// the operation stays pending on the credential.
func (s *Usecase) RunCredentialAction(ctx context.Context, in CredentialInput) (*entity.CredentialEvent, error) {
	ctx, span := s.startSpan(ctx, "RunCredentialAction")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	in.CredentialID = strings.TrimSpace(in.CredentialID)
	in.Action = strings.ToLower(strings.TrimSpace(in.Action))
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	result := make(chan entity.CredentialEvent, 1)
	done := func(evt entity.CredentialEvent) { result <- evt }

	err := s.onLoop(ctx, func() error {
		c, ok := s.tree.Credential(in.DeviceID, in.CredentialID)
		if !ok {
			if _, ok := s.tree.Device(in.DeviceID); !ok {
				return errDeviceNotFound()
			}
			return errCredentialNotFound()
		}
		s.dispatch(c, in, done)
		return nil
	})
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(s.opTimeout)
	defer timer.Stop()

	select {
	case evt := <-result:
		if !evt.Success {
			slog.WarnContext(ctx, "credential operation failed", "action", in.Action, "device_id", in.DeviceID, "credential", in.CredentialID, "error", evt.Error)
		}
		return &evt, nil
	case <-timer.C:
		slog.WarnContext(ctx, "credential operation timed out", "action", in.Action, "device_id", in.DeviceID, "credential", in.CredentialID)
		return nil, goerror.NewTimeout("Device did not answer in time")
	case <-ctx.Done():
		return nil, goerror.NewTimeout("Request canceled before the device answered")
	}
}

func (s *Usecase) dispatch(c *registry.Credential, in CredentialInput, done func(entity.CredentialEvent)) {
	switch in.Action {
	case ActionCopy:
		c.CopyToClipboard(done)
	case ActionType:
		c.TypeCode(in.FallbackToCopy, done)
	case ActionDelete:
		c.Delete(done)
	default:
		c.GenerateCode(done)
	}
}
