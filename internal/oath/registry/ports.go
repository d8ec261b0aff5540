package registry

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=registry

import (
	"context"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
)

// Backend is the source of truth for devices and credentials. Every method
// is called on the event loop; GenerateCode and DeleteCredential report
// their results later through Signals, never before they return.
type Backend interface {
	Signals() *entity.BackendSignals

	ListDevices() []entity.DeviceRecord
	Device(id string) (entity.DeviceRecord, bool)
	Credentials(deviceID string) []entity.CredentialRecord

	GenerateCode(deviceID, credentialName string)
	DeleteCredential(deviceID, credentialName string)
	AddCredential(ctx context.Context, deviceID string, in entity.AddCredentialInput) entity.AddCredentialResult

	SavePassword(ctx context.Context, deviceID, password string) error
	ChangePassword(ctx context.Context, deviceID, oldPassword, newPassword string) error
	ForgetDevice(ctx context.Context, deviceID string) error
	SetDeviceName(ctx context.Context, deviceID, name string) error
}

// Executor performs the user-facing side effects of credential operations.
type Executor interface {
	CopyCode(ctx context.Context, code string) error
	TypeCode(ctx context.Context, code string) error
	// ShowTouchNotification returns an id for CloseTouchNotification, or 0
	// when nothing was shown.
	ShowTouchNotification(ctx context.Context, credentialName, deviceModel string) uint32
	CloseTouchNotification(ctx context.Context, id uint32)
	// ShowCodeNotification tells the user that code was copied.
	ShowCodeNotification(ctx context.Context, code, credentialName, deviceModel string)
}

// Listener observes changes of the published object tree.
type Listener interface {
	ObjectAdded(path string, ifaces entity.InterfaceProperties)
	ObjectRemoved(path string, ifaces []string)
	PropertiesChanged(path, iface string, changed entity.Properties)
	CredentialSignal(path string, evt entity.CredentialEvent)
}
