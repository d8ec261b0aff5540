package virtual

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
)

// CreateDevice makes a new software token. A plugged token is announced
// right away.
func (b *Backend) CreateDevice(ctx context.Context, in entity.CreateVirtualDeviceInput) (*entity.VirtualToken, error) {
	var out entity.VirtualToken

	err := b.loop.Call(ctx, func() error {
		n := b.ids.Generate()
		id := "vt_" + strconv.FormatInt(n, 36)

		vt := entity.VirtualToken{
			ID:              id,
			Name:            strings.TrimSpace(in.Name),
			SerialNumber:    uint32(n),
			FirmwareVersion: firmwareVersion,
			Model:           in.Model,
			FormFactor:      in.FormFactor,
			Capabilities:    []string{"OATH"},
			PasswordKey:     deriveKey(id, in.Password),
			Plugged:         in.Plugged,
			CreatedAt:       b.clock.Now(),
		}
		if vt.Model == "" {
			vt.Model = defaultModel
		}
		if vt.FormFactor == "" {
			vt.FormFactor = defaultFormFactor
		}
		if vt.Name == "" {
			vt.Name = vt.Model
		}

		if err := b.store.CreateToken(ctx, vt); err != nil {
			return fmt.Errorf("create token: %w", err)
		}

		t := &token{VirtualToken: vt}
		b.tokens[id] = t
		b.order = append(b.order, id)
		slog.InfoContext(ctx, "virtual device created", "device_id", id, "plugged", vt.Plugged)

		if vt.Plugged {
			if err := b.detect(ctx, t); err != nil {
				return fmt.Errorf("detect token: %w", err)
			}
			b.sig.DeviceConnected.Emit(id)
		}

		out = vt
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// Plug connects the token. Plugging a plugged token is a no-op.
func (b *Backend) Plug(ctx context.Context, deviceID string) error {
	return b.loop.Call(ctx, func() error {
		t, ok := b.tokens[deviceID]
		if !ok {
			return entity.ErrDeviceNotFound
		}
		if t.Plugged {
			return nil
		}

		if err := b.store.SetTokenPlugged(ctx, deviceID, true); err != nil {
			return fmt.Errorf("plug token: %w", err)
		}
		t.Plugged = true
		if err := b.detect(ctx, t); err != nil {
			return fmt.Errorf("detect token: %w", err)
		}

		b.sig.DeviceConnected.Emit(deviceID)
		return nil
	})
}

// Unplug disconnects the token and locks it again.
func (b *Backend) Unplug(ctx context.Context, deviceID string) error {
	return b.loop.Call(ctx, func() error {
		t, ok := b.tokens[deviceID]
		if !ok {
			return entity.ErrDeviceNotFound
		}
		if !t.Plugged {
			return nil
		}

		if err := b.store.SetTokenPlugged(ctx, deviceID, false); err != nil {
			return fmt.Errorf("unplug token: %w", err)
		}
		t.Plugged = false
		t.unlocked = false

		if kd, ok := b.known[deviceID]; ok {
			kd.LastSeen = b.clock.Now()
			if err := b.store.SaveKnownDevice(ctx, kd); err != nil {
				slog.WarnContext(ctx, "failed to update last seen", "device_id", deviceID, "error", err)
			} else {
				b.known[deviceID] = kd
			}
		}

		b.sig.DeviceDisconnected.Emit(deviceID)
		return nil
	})
}
