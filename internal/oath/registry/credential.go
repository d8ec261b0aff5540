package registry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
)

// Credential is a published OATH credential. Its properties are fixed at
// construction; a changed credential is removed and added again.
type Credential struct {
	owner      *Manager
	id         string
	path       string
	record     entity.CredentialRecord
	registered bool

	pending *pendingOp
	opSeq   uint64
}

func newCredential(owner *Manager, id string, rec entity.CredentialRecord) *Credential {
	return &Credential{owner: owner, id: id, record: rec}
}

// ID is the encoded credential name.
func (c *Credential) ID() string { return c.id }

// Path is the object path, empty until SetPath.
func (c *Credential) Path() string { return c.path }

// Name is the full credential name as stored on the device.
func (c *Credential) Name() string { return c.record.Name }

// DeviceID is the id of the owning device.
func (c *Credential) DeviceID() string { return c.record.DeviceID }

// Record returns the credential snapshot.
func (c *Credential) Record() entity.CredentialRecord { return c.record }

// Pending reports whether an operation is waiting for its result.
func (c *Credential) Pending() bool { return c.pending != nil }

// SetPath assigns the object path. It cannot change once registered.
func (c *Credential) SetPath(path string) error {
	if c.registered {
		return ErrAlreadyRegistered
	}
	c.path = path
	return nil
}

// Register publishes the credential on the bus.
func (c *Credential) Register() error {
	if c.path == "" {
		return ErrNoPath
	}
	if c.registered {
		return nil
	}
	if err := c.owner.bus.Register(c.path, c); err != nil {
		return fmt.Errorf("register credential %s: %w", c.record.Name, err)
	}
	c.registered = true
	c.owner.countPublished(kindCredential, 1)
	return nil
}

// Unregister retracts the credential from the bus.
func (c *Credential) Unregister() {
	if !c.registered {
		return
	}
	c.owner.bus.Unregister(c.path)
	c.registered = false
	c.owner.countPublished(kindCredential, -1)
}

func (c *Credential) destroy() {
	c.cancelPending()
	c.Unregister()
}

// Properties returns the credential interface.
func (c *Credential) Properties() entity.InterfaceProperties {
	r := c.record
	return entity.InterfaceProperties{
		entity.InterfaceCredential: {
			"FullName":      r.Name,
			"Issuer":        r.Issuer,
			"Username":      r.Account,
			"RequiresTouch": r.RequiresTouch,
			"Type":          string(r.Type),
			"Algorithm":     string(r.Algorithm),
			"Digits":        r.Digits,
			"Period":        r.Period,
			"DeviceId":      r.DeviceID,
		},
	}
}

// GenerateCode asks the backend for a code. done, when set, receives the
// same event listeners see.
func (c *Credential) GenerateCode(done func(entity.CredentialEvent)) {
	c.owner.countOperation(entity.CredentialCodeGenerated)

	c.generateAndAct(false, func(code string, validUntil time.Time, errMsg string) {
		evt := entity.CredentialEvent{Kind: entity.CredentialCodeGenerated}
		if errMsg != "" {
			evt.Error = errMsg
		} else {
			evt.Success = true
			evt.Code = code
			evt.ValidUntil = validUntil
		}
		c.report(evt, done)
	})
}

// CopyToClipboard generates a code and writes it to the clipboard.
func (c *Credential) CopyToClipboard(done func(entity.CredentialEvent)) {
	c.owner.countOperation(entity.CredentialClipboardCopied)

	c.generateAndAct(true, func(code string, _ time.Time, errMsg string) {
		evt := entity.CredentialEvent{Kind: entity.CredentialClipboardCopied}
		switch {
		case errMsg != "":
			evt.Error = errMsg
		case c.copyCode(code, c.deviceModel()):
			evt.Success = true
		default:
			evt.Error = "Failed to copy code to clipboard"
		}
		c.report(evt, done)
	})
}

// TypeCode generates a code and types it into the focused window. When
// typing fails and fallbackToCopy is set the code goes to the clipboard
// instead; the outcome is still reported as CodeTyped.
func (c *Credential) TypeCode(fallbackToCopy bool, done func(entity.CredentialEvent)) {
	c.owner.countOperation(entity.CredentialCodeTyped)

	c.generateAndAct(true, func(code string, _ time.Time, errMsg string) {
		evt := entity.CredentialEvent{Kind: entity.CredentialCodeTyped}
		if errMsg != "" {
			evt.Error = errMsg
			c.report(evt, done)
			return
		}

		if err := c.owner.executor.TypeCode(c.owner.ctx, code); err == nil {
			evt.Success = true
		} else {
			slog.WarnContext(c.owner.ctx, "failed to type code", "credential", c.record.Name, "device_id", c.record.DeviceID, "error", err)
			if fallbackToCopy {
				model := c.deviceModel()
				slog.InfoContext(c.owner.ctx, "falling back to clipboard", "credential", c.record.Name, "device_model", model)
				evt.Success = c.copyCode(code, model)
			}
		}
		if !evt.Success {
			evt.Error = "Failed to type code"
		}
		c.report(evt, done)
	})
}

// Delete removes the credential from the device. The object itself goes
// away when the backend reports the new credential list.
func (c *Credential) Delete(done func(entity.CredentialEvent)) {
	c.owner.countOperation(entity.CredentialDeleted)

	c.deleteAndReport(func(errMsg string) {
		evt := entity.CredentialEvent{Kind: entity.CredentialDeleted, Success: errMsg == "", Error: errMsg}
		c.report(evt, done)
	})
}

// copyCode writes code to the clipboard and raises the copy notification.
func (c *Credential) copyCode(code, deviceModel string) bool {
	if err := c.owner.executor.CopyCode(c.owner.ctx, code); err != nil {
		slog.WarnContext(c.owner.ctx, "failed to copy code", "credential", c.record.Name, "error", err)
		return false
	}
	c.owner.executor.ShowCodeNotification(c.owner.ctx, code, c.record.Name, deviceModel)
	return true
}

func (c *Credential) deviceModel() string {
	if rec, ok := c.owner.backend.Device(c.record.DeviceID); ok {
		return rec.Model
	}
	return ""
}

func (c *Credential) report(evt entity.CredentialEvent, done func(entity.CredentialEvent)) {
	if c.path != "" {
		c.owner.emitCredentialSignal(c.path, evt)
	}
	if done != nil {
		done(evt)
	}
}
