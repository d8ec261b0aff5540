package entity

import "time"

// DeviceRecord is the backend's view of one OATH token.
type DeviceRecord struct {
	ID               string
	Name             string
	Connected        bool
	RequiresPassword bool
	HasValidPassword bool
	FirmwareVersion  string
	SerialNumber     uint32
	Model            string
	ModelCode        uint32
	FormFactor       string
	Capabilities     []string
	LastSeen         time.Time
}

// SessionState derives the device session state from the record flags.
func (d DeviceRecord) SessionState() string {
	switch {
	case !d.Connected:
		return SessionStateDisconnected
	case d.RequiresPassword && !d.HasValidPassword:
		return SessionStateLocked
	default:
		return SessionStateReady
	}
}

// VirtualToken is a software token persisted by the virtual backend.
type VirtualToken struct {
	ID string
	// Name is the factory name a host shows before the user renames it.
	Name            string
	SerialNumber    uint32
	FirmwareVersion string
	Model           string
	ModelCode       uint32
	FormFactor      string
	Capabilities    []string
	// PasswordKey is the derived OATH access key; empty when the token has
	// no password.
	PasswordKey []byte
	Plugged     bool
	CreatedAt   time.Time
}

// KnownDevice is a device the daemon has seen before and keeps listing
// while it is unplugged.
type KnownDevice struct {
	ID       string
	Name     string
	LastSeen time.Time
	// SavedKey is the remembered access key used to unlock the device on
	// the next connect.
	SavedKey []byte
}

// CreateVirtualDeviceInput describes a software token to create.
type CreateVirtualDeviceInput struct {
	Name       string
	Model      string
	FormFactor string
	// Password, when set, protects the token with an OATH password.
	Password string
	Plugged  bool
}
