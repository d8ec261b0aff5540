package virtual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/otp"
)

const (
	errMsgNoDevice      = "Device not found"
	errMsgNoCredential  = "Credential not found"
	errMsgNotConnected  = "Device is not connected"
	errMsgLocked        = "Device is locked"
	errMsgBusy          = "Device is busy"
	errMsgTouchTimeout  = "Touch timed out"
	errMsgGenerate      = "Failed to generate code"
	errMsgDelete        = "Failed to delete credential"
	errMsgAlreadyExists = "Credential already exists"
)

var errTouchTimeout = errors.New("virtual: touch timed out")

// usable returns the token and an error message when the token cannot
// serve credential requests.
func (b *Backend) usable(deviceID string) (*token, string) {
	t, ok := b.tokens[deviceID]
	switch {
	case !ok:
		return nil, errMsgNoDevice
	case !t.Plugged:
		return nil, errMsgNotConnected
	case t.locked():
		return nil, errMsgLocked
	}
	return t, ""
}

// GenerateCode computes a code off the loop and reports it with
// CodeGenerated. Touch credentials announce TouchRequired and wait for the
// configured touch delay first.
func (b *Backend) GenerateCode(deviceID, credentialName string) {
	fail := func(msg string) {
		b.post(func() {
			b.sig.CodeGenerated.Emit(entity.CodeResult{DeviceID: deviceID, CredentialName: credentialName, Err: msg})
		})
	}

	t, msg := b.usable(deviceID)
	if msg != "" {
		fail(msg)
		return
	}
	c, ok := t.credential(credentialName)
	if !ok {
		fail(errMsgNoCredential)
		return
	}

	snapshot := *c
	if snapshot.Record.Type == entity.OathTypeHOTP {
		c.Counter++
	}

	touch := snapshot.Record.RequiresTouch
	if touch {
		b.post(func() { b.sig.TouchRequired.Emit(deviceID) })
	}

	scheduled := b.gm.Go(b.ctx, func(ctx context.Context) error {
		res := entity.CodeResult{DeviceID: deviceID, CredentialName: credentialName}

		code, validUntil, err := b.compute(ctx, deviceID, snapshot, touch)
		switch {
		case errors.Is(err, errTouchTimeout):
			res.Err = errMsgTouchTimeout
		case err != nil:
			slog.ErrorContext(ctx, "failed to generate code", "device_id", deviceID, "credential", credentialName, "error", err)
			res.Err = errMsgGenerate
		default:
			res.Code, res.ValidUntil = code, validUntil
		}

		b.post(func() { b.sig.CodeGenerated.Emit(res) })
		return nil
	})
	if !scheduled {
		if snapshot.Record.Type == entity.OathTypeHOTP {
			c.Counter--
		}
		fail(errMsgBusy)
	}
}

func (b *Backend) compute(ctx context.Context, deviceID string, sc entity.StoredCredential, touch bool) (string, time.Time, error) {
	if touch {
		if err := b.waitForTouch(ctx); err != nil {
			return "", time.Time{}, err
		}
	}

	rec := sc.Record
	params := otp.Params{Algorithm: string(rec.Algorithm), Digits: rec.Digits, Period: uint(max(rec.Period, 0))}

	if rec.Type == entity.OathTypeHOTP {
		code, err := b.otp.HOTP(sc.Secret, sc.Counter, params)
		if err != nil {
			return "", time.Time{}, err
		}
		if err := b.store.SetCounter(ctx, deviceID, rec.Name, sc.Counter+1); err != nil {
			return "", time.Time{}, fmt.Errorf("persist counter: %w", err)
		}
		return code, time.Time{}, nil
	}

	return b.otp.TOTP(sc.Secret, b.clock.Now(), params)
}

func (b *Backend) waitForTouch(ctx context.Context) error {
	if b.touchDelay <= 0 {
		return nil
	}
	if b.touchDelay > b.touchTimeout {
		if err := wait(ctx, b.touchTimeout); err != nil {
			return err
		}
		return errTouchTimeout
	}
	return wait(ctx, b.touchDelay)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DeleteCredential removes the credential from the store and reports the
// outcome with CredentialDeleted, followed by CredentialsUpdated on success.
func (b *Backend) DeleteCredential(deviceID, credentialName string) {
	fail := func(msg string) {
		b.post(func() {
			b.sig.CredentialDeleted.Emit(entity.DeleteResult{DeviceID: deviceID, CredentialName: credentialName, Err: msg})
		})
	}

	t, msg := b.usable(deviceID)
	if msg != "" {
		fail(msg)
		return
	}
	if _, ok := t.credential(credentialName); !ok {
		fail(errMsgNoCredential)
		return
	}

	scheduled := b.gm.Go(b.ctx, func(ctx context.Context) error {
		err := b.store.DeleteCredential(ctx, deviceID, credentialName)
		b.post(func() { b.finishDelete(deviceID, credentialName, err) })
		return nil
	})
	if !scheduled {
		fail(errMsgBusy)
	}
}

func (b *Backend) finishDelete(deviceID, credentialName string, err error) {
	res := entity.DeleteResult{DeviceID: deviceID, CredentialName: credentialName}
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(b.ctx, "failed to delete credential", "device_id", deviceID, "credential", credentialName, "error", err)
		res.Err = errMsgDelete
		b.sig.CredentialDeleted.Emit(res)
		return
	}

	if t, ok := b.tokens[deviceID]; ok {
		for i := range t.creds {
			if t.creds[i].Record.Name == credentialName {
				t.creds = append(t.creds[:i], t.creds[i+1:]...)
				break
			}
		}
	}

	b.sig.CredentialDeleted.Emit(res)
	b.sig.CredentialsUpdated.Emit(deviceID)
}

// AddCredential stores a credential synchronously. Missing name or secret
// asks the caller to collect them; anything the token rejects is an Error.
func (b *Backend) AddCredential(ctx context.Context, deviceID string, in entity.AddCredentialInput) entity.AddCredentialResult {
	failed := func(msg string) entity.AddCredentialResult {
		return entity.AddCredentialResult{Status: entity.AddCredentialError, Message: msg}
	}

	t, msg := b.usable(deviceID)
	if msg != "" {
		return failed(msg)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" && in.Issuer != "" && in.Account != "" {
		name = in.Issuer + ":" + in.Account
	}
	if name == "" || strings.TrimSpace(in.Secret) == "" {
		return entity.AddCredentialResult{Status: entity.AddCredentialInteractive, Message: "Name and secret are required"}
	}

	sc, msg := b.newCredential(name, in)
	if msg != "" {
		return failed(msg)
	}
	if _, exists := t.credential(name); exists {
		return failed(errMsgAlreadyExists)
	}

	if err := b.store.InsertCredential(ctx, deviceID, sc, b.clock.Now()); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return failed(errMsgAlreadyExists)
		}
		slog.ErrorContext(ctx, "failed to store credential", "device_id", deviceID, "credential", name, "error", err)
		return failed("Failed to store credential")
	}

	t.creds = append(t.creds, sc)
	b.post(func() { b.sig.CredentialsUpdated.Emit(deviceID) })

	return entity.AddCredentialResult{Status: entity.AddCredentialSuccess, Message: name}
}

func (b *Backend) newCredential(name string, in entity.AddCredentialInput) (entity.StoredCredential, string) {
	if len(name) > 64 {
		return entity.StoredCredential{}, "Name is too long"
	}
	if !otp.ValidSecret(in.Secret) {
		return entity.StoredCredential{}, "Secret is not valid base32"
	}

	digits := in.Digits
	if digits == 0 {
		digits = 6
	}
	if digits < 6 || digits > 8 {
		return entity.StoredCredential{}, "Digits must be between 6 and 8"
	}
	period := in.Period
	if period <= 0 {
		period = otp.DefaultPeriod
	}

	typ := in.Type
	if typ == "" {
		typ = entity.OathTypeTOTP
	}
	alg := in.Algorithm
	if alg == "" {
		alg = entity.AlgorithmSHA1
	}

	issuer, account := in.Issuer, in.Account
	if issuer == "" && account == "" {
		if i, a, ok := strings.Cut(name, ":"); ok {
			issuer, account = i, a
		} else {
			account = name
		}
	}

	return entity.StoredCredential{
		Record: entity.CredentialRecord{
			Name:          name,
			Issuer:        issuer,
			Account:       account,
			Type:          typ,
			Algorithm:     alg,
			Digits:        digits,
			Period:        period,
			RequiresTouch: in.RequiresTouch,
		},
		Secret:  strings.ToUpper(strings.ReplaceAll(in.Secret, " ", "")),
		Counter: in.Counter,
	}, ""
}
