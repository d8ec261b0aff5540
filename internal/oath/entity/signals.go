package entity

import "github.com/shandysiswandi/gooath/internal/pkg/signal"

// BackendSignals are the events an OATH backend emits. They are always
// emitted on the event loop goroutine.
type BackendSignals struct {
	DeviceConnected    signal.Signal[string]
	DeviceDisconnected signal.Signal[string]
	DeviceForgotten    signal.Signal[string]
	CredentialsUpdated signal.Signal[string]
	CodeGenerated      signal.Signal[CodeResult]
	CredentialDeleted  signal.Signal[DeleteResult]
	TouchRequired      signal.Signal[string]
}
