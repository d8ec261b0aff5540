package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
)

type (
	DeviceInput struct {
		DeviceID string `validate:"required"`
	}

	DeviceOutput struct {
		Path       string
		Interfaces entity.InterfaceProperties
	}
)

// ManagedObjects lists every published device and credential.
func (s *Usecase) ManagedObjects(ctx context.Context) (map[string]entity.InterfaceProperties, error) {
	ctx, span := s.startSpan(ctx, "ManagedObjects")
	defer span.End()

	var out map[string]entity.InterfaceProperties
	err := s.onLoop(ctx, func() error {
		out = s.tree.ManagedObjects()
		return nil
	})
	return out, err
}

func (s *Usecase) GetDevice(ctx context.Context, in DeviceInput) (*DeviceOutput, error) {
	ctx, span := s.startSpan(ctx, "GetDevice")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var out *DeviceOutput
	err := s.onLoop(ctx, func() error {
		d, ok := s.tree.Device(in.DeviceID)
		if !ok {
			return errDeviceNotFound()
		}
		out = &DeviceOutput{Path: d.Path(), Interfaces: d.Properties()}
		return nil
	})
	return out, err
}
