package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/objectbus"
	"github.com/shandysiswandi/gooath/internal/pkg/pathid"
)

// Device is a published OATH token. It owns the credential objects found on
// the token while it is connected.
type Device struct {
	owner  *Manager
	id     string
	path   string
	record entity.DeviceRecord

	credentials map[string]*Credential
	registered  bool
}

func newDevice(owner *Manager, rec entity.DeviceRecord) *Device {
	return &Device{
		owner:       owner,
		id:          rec.ID,
		path:        owner.devicePath(rec.ID),
		record:      rec,
		credentials: make(map[string]*Credential),
	}
}

// ID is the backend device id.
func (d *Device) ID() string { return d.id }

// Path is the object path of the device.
func (d *Device) Path() string { return d.path }

// Name is the user-visible device name.
func (d *Device) Name() string { return d.record.Name }

// Connected reports whether the token is currently plugged in.
func (d *Device) Connected() bool { return d.record.Connected }

// Record returns a copy of the current device state.
func (d *Device) Record() entity.DeviceRecord {
	rec := d.record
	rec.Capabilities = slices.Clone(d.record.Capabilities)
	return rec
}

// Properties returns the device and session interfaces of the device.
func (d *Device) Properties() entity.InterfaceProperties {
	r := d.record
	lastSeen := int64(0)
	if !r.LastSeen.IsZero() {
		lastSeen = r.LastSeen.UnixMilli()
	}

	return entity.InterfaceProperties{
		entity.InterfaceDevice: {
			"Name":             r.Name,
			"ID":               r.ID,
			"Connected":        r.Connected,
			"RequiresPassword": r.RequiresPassword,
			"FirmwareVersion":  r.FirmwareVersion,
			"SerialNumber":     r.SerialNumber,
			"DeviceModel":      r.Model,
			"DeviceModelCode":  r.ModelCode,
			"FormFactor":       r.FormFactor,
			"Capabilities":     slices.Clone(r.Capabilities),
		},
		entity.InterfaceSession: {
			"State":            r.SessionState(),
			"StateMessage":     stateMessage(r),
			"HasValidPassword": r.HasValidPassword,
			"LastSeen":         lastSeen,
		},
	}
}

func stateMessage(r entity.DeviceRecord) string {
	switch r.SessionState() {
	case entity.SessionStateDisconnected:
		return "Device is not connected"
	case entity.SessionStateLocked:
		return "Password required"
	default:
		return ""
	}
}

// Credential returns a published credential by its identifier.
func (d *Device) Credential(id string) (*Credential, bool) {
	c, ok := d.credentials[id]
	return c, ok
}

// Credentials returns the published credentials ordered by identifier.
func (d *Device) Credentials() []*Credential {
	out := make([]*Credential, 0, len(d.credentials))
	for _, id := range d.credentialIDs() {
		out = append(out, d.credentials[id])
	}
	return out
}

// SetConnected updates the connected flag and announces the change.
func (d *Device) SetConnected(connected bool) {
	if d.record.Connected == connected {
		return
	}
	d.record.Connected = connected
	d.emitDevice(entity.Properties{"Connected": connected})
	d.emitSession()
}

// SetName renames the device on the backend first and then locally.
func (d *Device) SetName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	if name == d.record.Name {
		return nil
	}

	if err := d.owner.backend.SetDeviceName(ctx, d.id, name); err != nil {
		return fmt.Errorf("set device name: %w", err)
	}

	d.record.Name = name
	d.emitDevice(entity.Properties{"Name": name})

	return nil
}

// SavePassword stores the device password so the token unlocks without a
// prompt.
func (d *Device) SavePassword(ctx context.Context, password string) error {
	if err := d.owner.backend.SavePassword(ctx, d.id, password); err != nil {
		return fmt.Errorf("save password: %w", err)
	}

	if !d.record.HasValidPassword {
		d.record.HasValidPassword = true
		d.emitSession()
	}

	return nil
}

// ChangePassword sets a new device password. An empty new password removes
// the password protection.
func (d *Device) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := d.owner.backend.ChangePassword(ctx, d.id, oldPassword, newPassword); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	protected := newPassword != ""
	if d.record.RequiresPassword != protected {
		d.record.RequiresPassword = protected
		d.emitDevice(entity.Properties{"RequiresPassword": protected})
	}
	if d.record.HasValidPassword != protected {
		d.record.HasValidPassword = protected
		d.emitSession()
	}

	return nil
}

// Forget asks the backend to drop the device. The object is removed once
// the backend reports the device as forgotten.
func (d *Device) Forget(ctx context.Context) error {
	if err := d.owner.backend.ForgetDevice(ctx, d.id); err != nil {
		return fmt.Errorf("forget device: %w", err)
	}
	return nil
}

// AddCredential stores a new credential on the device. On success the
// returned path is where the credential is published once the backend
// reports the updated credential list.
func (d *Device) AddCredential(ctx context.Context, in entity.AddCredentialInput) (entity.AddCredentialResult, string) {
	res := d.owner.backend.AddCredential(ctx, d.id, in)
	if res.Status != entity.AddCredentialSuccess {
		return res, ""
	}

	name := res.Message
	if name == "" {
		name = in.Name
	}

	return res, d.credentialPath(pathid.Encode(name))
}

// SyncCredentials makes the published credentials equal to records.
// Credentials that are gone are removed first, in identifier order, then
// new ones are added in record order. When two records encode to the same
// identifier the first one wins.
func (d *Device) SyncCredentials(records []entity.CredentialRecord) {
	wanted := make(map[string]entity.CredentialRecord, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		id := pathid.Encode(rec.Name)
		if _, dup := wanted[id]; dup {
			slog.WarnContext(d.owner.ctx, "credential already exists", "device_id", d.id, "credential", rec.Name, "credential_id", id)
			continue
		}
		wanted[id] = rec
		order = append(order, id)
	}

	stale, _ := lo.Difference(lo.Keys(d.credentials), order)
	slices.Sort(stale)
	for _, id := range stale {
		d.removeCredential(id)
	}

	for _, id := range order {
		if _, ok := d.credentials[id]; ok {
			continue
		}
		d.addCredential(id, wanted[id])
	}
}

func (d *Device) addCredential(id string, rec entity.CredentialRecord) {
	if rec.DeviceID == "" {
		rec.DeviceID = d.id
	}

	c := newCredential(d.owner, id, rec)
	if err := c.SetPath(d.credentialPath(id)); err != nil {
		slog.ErrorContext(d.owner.ctx, "failed to set credential path", "device_id", d.id, "credential_id", id, "error", err)
		return
	}
	if err := c.Register(); err != nil {
		slog.ErrorContext(d.owner.ctx, "failed to register credential object", "device_id", d.id, "path", c.Path(), "error", err)
		return
	}

	d.credentials[id] = c
	d.owner.emitAdded(c.Path(), c.Properties())
}

func (d *Device) removeCredential(id string) {
	c, ok := d.credentials[id]
	if !ok {
		return
	}

	c.destroy()
	delete(d.credentials, id)
	d.owner.emitRemoved(c.Path(), []string{entity.InterfaceCredential})
}

func (d *Device) credentialIDs() []string {
	ids := lo.Keys(d.credentials)
	slices.Sort(ids)
	return ids
}

func (d *Device) credentialPath(id string) string {
	return objectbus.Join(d.path, "credentials", id)
}

func (d *Device) register() error {
	if d.registered {
		return nil
	}
	if err := d.owner.bus.Register(d.path, d); err != nil {
		return err
	}
	d.registered = true
	d.owner.countPublished(kindDevice, 1)
	return nil
}

// destroy retracts every credential without notifying listeners, then the
// device itself.
func (d *Device) destroy() {
	for _, id := range d.credentialIDs() {
		d.credentials[id].destroy()
		delete(d.credentials, id)
	}
	if d.registered {
		d.owner.bus.Unregister(d.path)
		d.registered = false
		d.owner.countPublished(kindDevice, -1)
	}
}

// refresh replaces the device state with rec and announces what changed.
func (d *Device) refresh(rec entity.DeviceRecord) {
	prev := d.Properties()
	d.record = rec
	next := d.Properties()

	for _, iface := range []string{entity.InterfaceDevice, entity.InterfaceSession} {
		changed := entity.Properties{}
		for k, v := range next[iface] {
			if !propEqual(prev[iface][k], v) {
				changed[k] = v
			}
		}
		if len(changed) > 0 {
			d.owner.emitPropertiesChanged(d.path, iface, changed)
		}
	}
}

func (d *Device) emitDevice(changed entity.Properties) {
	d.owner.emitPropertiesChanged(d.path, entity.InterfaceDevice, changed)
}

func (d *Device) emitSession() {
	d.owner.emitPropertiesChanged(d.path, entity.InterfaceSession, d.Properties()[entity.InterfaceSession])
}

func propEqual(a, b any) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok || bok {
		return aok && bok && slices.Equal(as, bs)
	}
	return a == b
}
