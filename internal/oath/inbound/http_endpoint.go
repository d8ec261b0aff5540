package inbound

import (
	"context"
	"errors"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/usecase"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc      uc
	virtual VirtualControl
}

// ManagedObjects lists every published device and credential.
// @Summary List objects
// @Description Returns every published object path with its interfaces and properties.
// @Tags OATH
// @Produce json
// @Success 200 {object} router.successResponse{data=ObjectsResponse} "Object tree"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/oath/objects [get]
func (h *HTTPEndpoint) ManagedObjects(r *router.Request) (any, error) {
	objects, err := h.uc.ManagedObjects(r.Context())
	if err != nil {
		return nil, err
	}

	return ObjectsResponse{Objects: objects}, nil
}

// GetDevice returns one device.
// @Summary Get device
// @Tags OATH
// @Produce json
// @Param device path string true "Device ID"
// @Success 200 {object} router.successResponse{data=DeviceResponse} "Device"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Router /api/v1/oath/devices/{device} [get]
func (h *HTTPEndpoint) GetDevice(r *router.Request) (any, error) {
	out, err := h.uc.GetDevice(r.Context(), usecase.DeviceInput{DeviceID: r.GetParam("device")})
	if err != nil {
		return nil, err
	}

	return DeviceResponse{Path: out.Path, Interfaces: out.Interfaces}, nil
}

// RenameDevice changes the display name of a device.
// @Summary Rename device
// @Tags OATH
// @Accept json
// @Param device path string true "Device ID"
// @Param request body RenameDeviceRequest true "New name"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/oath/devices/{device} [patch]
func (h *HTTPEndpoint) RenameDevice(r *router.Request) (any, error) {
	var req RenameDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RenameDevice(r.Context(), usecase.RenameDeviceInput{
		DeviceID: r.GetParam("device"),
		Name:     req.Name,
	})
}

// ForgetDevice drops a remembered device.
// @Summary Forget device
// @Tags OATH
// @Param device path string true "Device ID"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Router /api/v1/oath/devices/{device} [delete]
func (h *HTTPEndpoint) ForgetDevice(r *router.Request) (any, error) {
	return nil, h.uc.ForgetDevice(r.Context(), usecase.DeviceInput{DeviceID: r.GetParam("device")})
}

// SavePassword unlocks a device and remembers its password.
// @Summary Save device password
// @Tags OATH
// @Accept json
// @Param device path string true "Device ID"
// @Param request body SavePasswordRequest true "Password"
// @Success 204 "No Content"
// @Failure 422 {object} router.errorResponse "Wrong password"
// @Failure 503 {object} router.errorResponse "Device is not connected"
// @Router /api/v1/oath/devices/{device}/password [post]
func (h *HTTPEndpoint) SavePassword(r *router.Request) (any, error) {
	var req SavePasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SavePassword(r.Context(), usecase.SavePasswordInput{
		DeviceID: r.GetParam("device"),
		Password: req.Password,
	})
}

// ChangePassword sets, changes or removes the device password.
// @Summary Change device password
// @Tags OATH
// @Accept json
// @Param device path string true "Device ID"
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 204 "No Content"
// @Router /api/v1/oath/devices/{device}/password [put]
func (h *HTTPEndpoint) ChangePassword(r *router.Request) (any, error) {
	var req ChangePasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.ChangePassword(r.Context(), usecase.ChangePasswordInput{
		DeviceID:    r.GetParam("device"),
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
}

// AddCredential stores a new credential on the device.
// @Summary Add credential
// @Tags OATH
// @Accept json
// @Produce json
// @Param device path string true "Device ID"
// @Param request body AddCredentialRequest true "Credential"
// @Success 201 {object} router.successResponse{data=AddCredentialResponse} "Created"
// @Success 202 {object} router.successResponse{data=AddCredentialResponse} "More input needed"
// @Failure 409 {object} router.errorResponse "Refused by device"
// @Router /api/v1/oath/devices/{device}/credentials [post]
func (h *HTTPEndpoint) AddCredential(r *router.Request) (any, error) {
	var req AddCredentialRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.AddCredential(r.Context(), usecase.AddCredentialInput{
		DeviceID:      r.GetParam("device"),
		Name:          req.Name,
		Issuer:        req.Issuer,
		Account:       req.Account,
		Secret:        req.Secret,
		Type:          req.Type,
		Algorithm:     req.Algorithm,
		Digits:        req.Digits,
		Period:        req.Period,
		Counter:       req.Counter,
		RequiresTouch: req.RequiresTouch,
	})
	if err != nil {
		return nil, err
	}

	return AddCredentialResponse{Status: out.Status.String(), Message: out.Message, Path: out.Path}, nil
}

// GenerateCode computes a code and returns it.
// @Summary Generate code
// @Tags OATH
// @Produce json
// @Param device path string true "Device ID"
// @Param credential path string true "Credential identifier"
// @Success 200 {object} router.successResponse{data=CredentialEventResponse} "Result"
// @Failure 404 {object} router.errorResponse "Credential not found"
// @Failure 504 {object} router.errorResponse "Device did not answer in time"
// @Router /api/v1/oath/devices/{device}/credentials/{credential}/generate [post]
func (h *HTTPEndpoint) GenerateCode(r *router.Request) (any, error) {
	return toEventResponse(h.uc.GenerateCode(r.Context(), credentialInput(r)))
}

// CopyCode computes a code and writes it to the clipboard.
// @Summary Copy code
// @Tags OATH
// @Produce json
// @Param device path string true "Device ID"
// @Param credential path string true "Credential identifier"
// @Success 200 {object} router.successResponse{data=CredentialEventResponse} "Result"
// @Router /api/v1/oath/devices/{device}/credentials/{credential}/copy [post]
func (h *HTTPEndpoint) CopyCode(r *router.Request) (any, error) {
	return toEventResponse(h.uc.CopyCode(r.Context(), credentialInput(r)))
}

// TypeCode computes a code and types it into the focused window.
// @Summary Type code
// @Tags OATH
// @Accept json
// @Produce json
// @Param device path string true "Device ID"
// @Param credential path string true "Credential identifier"
// @Param request body TypeCodeRequest false "Fallback"
// @Success 200 {object} router.successResponse{data=CredentialEventResponse} "Result"
// @Router /api/v1/oath/devices/{device}/credentials/{credential}/type [post]
func (h *HTTPEndpoint) TypeCode(r *router.Request) (any, error) {
	var req TypeCodeRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	in := credentialInput(r)
	in.FallbackToCopy = req.FallbackToCopy
	return toEventResponse(h.uc.TypeCode(r.Context(), in))
}

// DeleteCredential removes a credential from the device.
// @Summary Delete credential
// @Tags OATH
// @Produce json
// @Param device path string true "Device ID"
// @Param credential path string true "Credential identifier"
// @Success 200 {object} router.successResponse{data=CredentialEventResponse} "Result"
// @Router /api/v1/oath/devices/{device}/credentials/{credential} [delete]
func (h *HTTPEndpoint) DeleteCredential(r *router.Request) (any, error) {
	return toEventResponse(h.uc.DeleteCredential(r.Context(), credentialInput(r)))
}

func (h *HTTPEndpoint) CreateVirtualDevice(r *router.Request) (any, error) {
	var req CreateVirtualDeviceRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	plugged := true
	if req.Plugged != nil {
		plugged = *req.Plugged
	}

	tok, err := h.virtual.CreateDevice(r.Context(), entity.CreateVirtualDeviceInput{
		Name:       req.Name,
		Model:      req.Model,
		FormFactor: req.FormFactor,
		Password:   req.Password,
		Plugged:    plugged,
	})
	if err != nil {
		return nil, virtualError(err)
	}

	return VirtualDeviceResponse{
		ID:              tok.ID,
		Name:            tok.Name,
		SerialNumber:    tok.SerialNumber,
		FirmwareVersion: tok.FirmwareVersion,
		Model:           tok.Model,
		FormFactor:      tok.FormFactor,
		CreatedAt:       tok.CreatedAt,
	}, nil
}

func (h *HTTPEndpoint) PlugVirtualDevice(r *router.Request) (any, error) {
	return nil, virtualError(h.virtual.Plug(r.Context(), r.GetParam("device")))
}

func (h *HTTPEndpoint) UnplugVirtualDevice(r *router.Request) (any, error) {
	return nil, virtualError(h.virtual.Unplug(r.Context(), r.GetParam("device")))
}

func virtualError(err error) error {
	var gerr *goerror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &gerr):
		return err
	case errors.Is(err, entity.ErrDeviceNotFound):
		return goerror.NewBusiness("Device not found", goerror.CodeNotFound)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return goerror.NewTimeout("Device did not answer in time")
	default:
		return goerror.NewServer(err)
	}
}

func credentialInput(r *router.Request) usecase.CredentialInput {
	return usecase.CredentialInput{
		DeviceID:     r.GetParam("device"),
		CredentialID: r.GetParam("credential"),
	}
}

func toEventResponse(evt *entity.CredentialEvent, err error) (any, error) {
	if err != nil {
		return nil, err
	}

	resp := CredentialEventResponse{
		Kind:    string(evt.Kind),
		Success: evt.Success,
		Code:    evt.Code,
		Error:   evt.Error,
	}
	if !evt.ValidUntil.IsZero() {
		resp.ValidUntil = &evt.ValidUntil
	}
	return resp, nil
}
