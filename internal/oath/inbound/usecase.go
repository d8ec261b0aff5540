package inbound

import (
	"context"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/usecase"
)

type ucStream interface {
	Stream(ctx context.Context) <-chan entity.ObjectEvent
}

type ucCredential interface {
	GenerateCode(ctx context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error)
	CopyCode(ctx context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error)
	TypeCode(ctx context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error)
	DeleteCredential(ctx context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error)
	RunCredentialAction(ctx context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error)
}

type uc interface {
	ucStream
	ucCredential

	ManagedObjects(ctx context.Context) (map[string]entity.InterfaceProperties, error)
	GetDevice(ctx context.Context, in usecase.DeviceInput) (*usecase.DeviceOutput, error)
	RenameDevice(ctx context.Context, in usecase.RenameDeviceInput) error
	SavePassword(ctx context.Context, in usecase.SavePasswordInput) error
	ChangePassword(ctx context.Context, in usecase.ChangePasswordInput) error
	ForgetDevice(ctx context.Context, in usecase.DeviceInput) error
	AddCredential(ctx context.Context, in usecase.AddCredentialInput) (*usecase.AddCredentialOutput, error)
}

// VirtualControl plugs and unplugs software tokens.
type VirtualControl interface {
	CreateDevice(ctx context.Context, in entity.CreateVirtualDeviceInput) (*entity.VirtualToken, error)
	Plug(ctx context.Context, deviceID string) error
	Unplug(ctx context.Context, deviceID string) error
}
