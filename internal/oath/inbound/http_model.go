package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
)

type ObjectsResponse struct {
	Objects map[string]entity.InterfaceProperties `json:"objects" swaggertype:"object"`
}

type DeviceResponse struct {
	Path       string                     `json:"path"`
	Interfaces entity.InterfaceProperties `json:"interfaces" swaggertype:"object"`
}

type RenameDeviceRequest struct {
	Name string `json:"name"`
}

type SavePasswordRequest struct {
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AddCredentialRequest struct {
	Name          string `json:"name"`
	Issuer        string `json:"issuer"`
	Account       string `json:"account"`
	Secret        string `json:"secret"`
	Type          string `json:"type"`
	Algorithm     string `json:"algorithm"`
	Digits        int    `json:"digits"`
	Period        int    `json:"period"`
	Counter       uint64 `json:"counter"`
	RequiresTouch bool   `json:"requires_touch"`
}

type AddCredentialResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path,omitempty"`
}

func (r AddCredentialResponse) StatusCode() int {
	if r.Path != "" {
		return http.StatusCreated
	}
	return http.StatusAccepted
}

type TypeCodeRequest struct {
	FallbackToCopy bool `json:"fallback_to_copy"`
}

type CredentialEventResponse struct {
	Kind       string     `json:"kind"`
	Success    bool       `json:"success"`
	Code       string     `json:"code,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type CreateVirtualDeviceRequest struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	FormFactor string `json:"form_factor"`
	Password   string `json:"password"`
	Plugged    *bool  `json:"plugged"`
}

type VirtualDeviceResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SerialNumber    uint32    `json:"serial_number"`
	FirmwareVersion string    `json:"firmware_version"`
	Model           string    `json:"model"`
	FormFactor      string    `json:"form_factor"`
	CreatedAt       time.Time `json:"created_at"`
}

func (VirtualDeviceResponse) StatusCode() int { return http.StatusCreated }
