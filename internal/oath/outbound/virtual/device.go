package virtual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
)

func (b *Backend) keyMatchesSaved(t *token) bool {
	if len(t.PasswordKey) == 0 {
		return false
	}
	kd, ok := b.known[t.ID]
	return ok && keysEqual(kd.SavedKey, t.PasswordKey)
}

func (b *Backend) connectedToken(deviceID string) (*token, error) {
	t, ok := b.tokens[deviceID]
	if !ok {
		return nil, entity.ErrDeviceNotFound
	}
	if !t.Plugged {
		return nil, entity.ErrDeviceNotConnected
	}
	return t, nil
}

// SavePassword unlocks the token and remembers the key for the next plug.
func (b *Backend) SavePassword(ctx context.Context, deviceID, password string) error {
	t, err := b.connectedToken(deviceID)
	if err != nil {
		return err
	}
	if len(t.PasswordKey) == 0 {
		return nil
	}
	if password == "" {
		return entity.ErrPasswordRequired
	}

	key := deriveKey(deviceID, password)
	if !keysEqual(key, t.PasswordKey) {
		return entity.ErrWrongPassword
	}

	kd := b.knownOrNew(t)
	kd.SavedKey = key
	if err := b.store.SaveKnownDevice(ctx, kd); err != nil {
		return fmt.Errorf("save device key: %w", err)
	}
	b.known[deviceID] = kd

	if !t.unlocked {
		t.unlocked = true
		b.post(func() { b.sig.CredentialsUpdated.Emit(deviceID) })
	}

	return nil
}

// ChangePassword replaces the token password. An empty newPassword removes
// the protection.
func (b *Backend) ChangePassword(ctx context.Context, deviceID, oldPassword, newPassword string) error {
	t, err := b.connectedToken(deviceID)
	if err != nil {
		return err
	}
	if len(t.PasswordKey) > 0 && !keysEqual(deriveKey(deviceID, oldPassword), t.PasswordKey) {
		return entity.ErrWrongPassword
	}

	key := deriveKey(deviceID, newPassword)
	if err := b.store.SetTokenPasswordKey(ctx, deviceID, key); err != nil {
		return fmt.Errorf("set password key: %w", err)
	}

	kd := b.knownOrNew(t)
	kd.SavedKey = key
	if err := b.store.SaveKnownDevice(ctx, kd); err != nil {
		slog.WarnContext(ctx, "failed to remember device key", "device_id", deviceID, "error", err)
	} else {
		b.known[deviceID] = kd
	}

	wasLocked := t.locked()
	t.PasswordKey = key
	t.unlocked = len(key) > 0
	if wasLocked {
		b.post(func() { b.sig.CredentialsUpdated.Emit(deviceID) })
	}

	return nil
}

// ForgetDevice drops what the host remembers about the token. A token that
// is still plugged is detected again as a new device.
func (b *Backend) ForgetDevice(ctx context.Context, deviceID string) error {
	t, ok := b.tokens[deviceID]
	if !ok {
		return entity.ErrDeviceNotFound
	}

	if err := b.store.DeleteKnownDevice(ctx, deviceID); err != nil && !errors.Is(err, goerror.ErrNotFound) {
		return fmt.Errorf("delete known device: %w", err)
	}
	delete(b.known, deviceID)
	t.unlocked = false

	b.post(func() {
		b.sig.DeviceForgotten.Emit(deviceID)
		if !t.Plugged {
			return
		}
		if err := b.detect(b.ctx, t); err != nil {
			slog.ErrorContext(b.ctx, "failed to detect device again", "device_id", deviceID, "error", err)
			return
		}
		b.sig.DeviceConnected.Emit(deviceID)
	})

	return nil
}

func (b *Backend) SetDeviceName(ctx context.Context, deviceID, name string) error {
	t, ok := b.tokens[deviceID]
	if !ok {
		return entity.ErrDeviceNotFound
	}

	kd := b.knownOrNew(t)
	kd.Name = strings.TrimSpace(name)
	if err := b.store.SaveKnownDevice(ctx, kd); err != nil {
		return fmt.Errorf("save device name: %w", err)
	}
	b.known[deviceID] = kd

	return nil
}

func (b *Backend) knownOrNew(t *token) entity.KnownDevice {
	if kd, ok := b.known[t.ID]; ok {
		return kd
	}
	return entity.KnownDevice{ID: t.ID, Name: t.Name, LastSeen: b.clock.Now()}
}

// detect records the token as seen now and unlocks it with a saved key.
func (b *Backend) detect(ctx context.Context, t *token) error {
	kd := b.knownOrNew(t)
	kd.LastSeen = b.clock.Now()
	if err := b.store.SaveKnownDevice(ctx, kd); err != nil {
		return err
	}
	b.known[t.ID] = kd
	t.unlocked = b.keyMatchesSaved(t)
	return nil
}
