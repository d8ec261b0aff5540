package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/registry"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
)

type (
	RenameDeviceInput struct {
		DeviceID string `validate:"required"`
		Name     string `validate:"devicename,max=64"`
	}

	SavePasswordInput struct {
		DeviceID string `validate:"required"`
		Password string `validate:"required"`
	}

	ChangePasswordInput struct {
		DeviceID    string `validate:"required"`
		OldPassword string
		NewPassword string
	}

	AddCredentialInput struct {
		DeviceID      string `validate:"required"`
		Name          string `validate:"omitempty,oathname"`
		Issuer        string
		Account       string
		Secret        string `validate:"omitempty,base32secret"`
		Type          string `validate:"omitempty,oneof=TOTP HOTP totp hotp"`
		Algorithm     string `validate:"omitempty,oneof=SHA1 SHA256 SHA512 sha1 sha256 sha512"`
		Digits        int    `validate:"omitempty,min=6,max=8"`
		Period        int    `validate:"omitempty,min=1,max=300"`
		Counter       uint64
		RequiresTouch bool
	}

	AddCredentialOutput struct {
		Status  entity.AddCredentialStatus
		Message string
		Path    string
	}
)

// withDevice resolves the device on the loop and runs fn there.
func (s *Usecase) withDevice(ctx context.Context, deviceID string, fn func(d *registry.Device) error) error {
	return s.onLoop(ctx, func() error {
		d, ok := s.tree.Device(deviceID)
		if !ok {
			return errDeviceNotFound()
		}
		return fn(d)
	})
}

func (s *Usecase) RenameDevice(ctx context.Context, in RenameDeviceInput) error {
	ctx, span := s.startSpan(ctx, "RenameDevice")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.withDevice(ctx, in.DeviceID, func(d *registry.Device) error {
		if err := d.SetName(ctx, in.Name); err != nil {
			return mapBackendError(ctx, "rename device", err)
		}
		return nil
	})
}

func (s *Usecase) SavePassword(ctx context.Context, in SavePasswordInput) error {
	ctx, span := s.startSpan(ctx, "SavePassword")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.withDevice(ctx, in.DeviceID, func(d *registry.Device) error {
		if err := d.SavePassword(ctx, in.Password); err != nil {
			return mapBackendError(ctx, "save device password", err)
		}
		return nil
	})
}

// ChangePassword sets, changes or (with an empty NewPassword) removes the
// device password.
func (s *Usecase) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	ctx, span := s.startSpan(ctx, "ChangePassword")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if in.OldPassword == "" && in.NewPassword == "" {
		return goerror.NewInvalidInput(nil, "new_password", "NewPassword is a required field")
	}

	return s.withDevice(ctx, in.DeviceID, func(d *registry.Device) error {
		if err := d.ChangePassword(ctx, in.OldPassword, in.NewPassword); err != nil {
			return mapBackendError(ctx, "change device password", err)
		}
		return nil
	})
}

// ForgetDevice drops a remembered device. The object disappears once the
// backend reports the device as forgotten.
func (s *Usecase) ForgetDevice(ctx context.Context, in DeviceInput) error {
	ctx, span := s.startSpan(ctx, "ForgetDevice")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.withDevice(ctx, in.DeviceID, func(d *registry.Device) error {
		if err := d.Forget(ctx); err != nil {
			return mapBackendError(ctx, "forget device", err)
		}
		return nil
	})
}

// AddCredential stores a credential on the device. Missing name or secret
// yields an Interactive result instead of an error.
func (s *Usecase) AddCredential(ctx context.Context, in AddCredentialInput) (*AddCredentialOutput, error) {
	ctx, span := s.startSpan(ctx, "AddCredential")
	defer span.End()

	in.DeviceID = strings.TrimSpace(in.DeviceID)
	in.Issuer = strings.TrimSpace(in.Issuer)
	in.Account = strings.TrimSpace(in.Account)
	in.Secret = strings.TrimSpace(in.Secret)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	input := entity.AddCredentialInput{
		Name:          in.Name,
		Issuer:        in.Issuer,
		Account:       in.Account,
		Secret:        in.Secret,
		Type:          entity.ParseOathType(in.Type),
		Algorithm:     entity.ParseAlgorithm(in.Algorithm),
		Digits:        in.Digits,
		Period:        in.Period,
		Counter:       in.Counter,
		RequiresTouch: in.RequiresTouch,
	}

	var out *AddCredentialOutput
	err := s.withDevice(ctx, in.DeviceID, func(d *registry.Device) error {
		res, path := d.AddCredential(ctx, input)
		if res.Status == entity.AddCredentialError {
			return goerror.NewBusiness(res.Message, goerror.CodeConflict)
		}
		out = &AddCredentialOutput{Status: res.Status, Message: res.Message, Path: path}
		return nil
	})
	return out, err
}
