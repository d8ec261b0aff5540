package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorCode(t *testing.T, err error) goerror.Code {
	t.Helper()
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	return gerr.Code()
}

func TestUsecase_ManagedObjectsAndDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	objects, err := f.uc.ManagedObjects(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 2)
	assert.Contains(t, objects, credPath)

	dev, err := f.uc.GetDevice(ctx, DeviceInput{DeviceID: " dev1 "})
	require.NoError(t, err)
	assert.Equal(t, devPath, dev.Path)
	assert.Equal(t, "Work key", dev.Interfaces[entity.InterfaceDevice]["Name"])

	_, err = f.uc.GetDevice(ctx, DeviceInput{DeviceID: "nope"})
	assert.Equal(t, goerror.CodeNotFound, errorCode(t, err))

	_, err = f.uc.GetDevice(ctx, DeviceInput{})
	assert.Equal(t, goerror.CodeInvalidInput, errorCode(t, err))
}

func TestUsecase_GenerateCode(t *testing.T) {
	f := newFixture(t)

	evt, err := f.uc.GenerateCode(context.Background(), credInput())

	require.NoError(t, err)
	assert.True(t, evt.Success)
	assert.Equal(t, "123456", evt.Code)
	assert.Equal(t, entity.CredentialCodeGenerated, evt.Kind)
}

func TestUsecase_GenerateCodeFailureIsData(t *testing.T) {
	f := newFixture(t)
	f.onLoop(t, func() { f.backend.codeErr = "Device removed" })

	evt, err := f.uc.GenerateCode(context.Background(), credInput())

	require.NoError(t, err)
	assert.False(t, evt.Success)
	assert.Equal(t, "Device removed", evt.Error)
}

func TestUsecase_GenerateCodeTimesOut(t *testing.T) {
	f := newFixture(t)
	f.uc.opTimeout = 20 * time.Millisecond
	f.onLoop(t, func() { f.backend.silent = true })

	_, err := f.uc.GenerateCode(context.Background(), credInput())

	assert.Equal(t, goerror.CodeTimeout, errorCode(t, err))
}

func TestUsecase_TypeCodeFallsBackToCopy(t *testing.T) {
	f := newFixture(t)
	in := credInput()
	in.FallbackToCopy = true

	evt, err := f.uc.TypeCode(context.Background(), in)

	require.NoError(t, err)
	assert.True(t, evt.Success)
	assert.Equal(t, entity.CredentialCodeTyped, evt.Kind)
	f.onLoop(t, func() {
		assert.Equal(t, []string{"123456"}, f.exec.copied)
		assert.Equal(t, []string{"123456"}, f.exec.announced)
	})
}

func TestUsecase_CredentialNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CopyCode(context.Background(), CredentialInput{DeviceID: "dev1", CredentialID: "missing"})
	assert.Equal(t, goerror.CodeNotFound, errorCode(t, err))

	_, err = f.uc.CopyCode(context.Background(), CredentialInput{DeviceID: "ghost", CredentialID: "x"})
	assert.Equal(t, goerror.CodeNotFound, errorCode(t, err))

	_, err = f.uc.RunCredentialAction(context.Background(), CredentialInput{DeviceID: "dev1", CredentialID: "x", Action: "explode"})
	assert.Equal(t, goerror.CodeInvalidInput, errorCode(t, err))
}

func TestUsecase_DeleteCredentialRemovesObject(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := f.uc.Stream(ctx)

	evt, err := f.uc.DeleteCredential(context.Background(), credInput())
	require.NoError(t, err)
	assert.True(t, evt.Success)

	var types []string
	for len(types) < 2 {
		select {
		case e := <-stream:
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("stream got only %v", types)
		}
	}
	assert.Equal(t, []string{entity.EventCredentialSignal, entity.EventObjectRemoved}, types)
}

func TestUsecase_DeviceOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.RenameDevice(ctx, RenameDeviceInput{DeviceID: "dev1", Name: "Home key"}))
	dev, err := f.uc.GetDevice(ctx, DeviceInput{DeviceID: "dev1"})
	require.NoError(t, err)
	assert.Equal(t, "Home key", dev.Interfaces[entity.InterfaceDevice]["Name"])

	err = f.uc.RenameDevice(ctx, RenameDeviceInput{DeviceID: "dev1", Name: "  "})
	assert.Equal(t, goerror.CodeInvalidInput, errorCode(t, err))

	require.NoError(t, f.uc.SavePassword(ctx, SavePasswordInput{DeviceID: "dev1", Password: "hunter2"}))
	err = f.uc.SavePassword(ctx, SavePasswordInput{DeviceID: "dev1", Password: "wrong"})
	assert.Equal(t, goerror.CodeInvalidInput, errorCode(t, err))

	err = f.uc.ChangePassword(ctx, ChangePasswordInput{DeviceID: "dev1"})
	assert.Equal(t, goerror.CodeInvalidInput, errorCode(t, err))
	require.NoError(t, f.uc.ChangePassword(ctx, ChangePasswordInput{DeviceID: "dev1", NewPassword: "s3cret"}))

	f.onLoop(t, func() { f.backend.err = entity.ErrDeviceNotConnected })
	err = f.uc.RenameDevice(ctx, RenameDeviceInput{DeviceID: "dev1", Name: "Other"})
	assert.Equal(t, goerror.CodeUnavailable, errorCode(t, err))

	f.onLoop(t, func() { f.backend.err = errors.New("disk full") })
	err = f.uc.ChangePassword(ctx, ChangePasswordInput{DeviceID: "dev1", OldPassword: "a", NewPassword: "b"})
	assert.Equal(t, goerror.CodeInternal, errorCode(t, err))
}

func TestUsecase_ForgetDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.ForgetDevice(ctx, DeviceInput{DeviceID: "dev1"}))

	require.Eventually(t, func() bool {
		objects, err := f.uc.ManagedObjects(ctx)
		return err == nil && len(objects) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestUsecase_AddCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.AddCredential(ctx, AddCredentialInput{DeviceID: "dev1", Name: "AWS:bob", Secret: "JBSWY3DPEHPK3PXP", Type: "hotp"})
	require.NoError(t, err)
	assert.Equal(t, entity.AddCredentialSuccess, out.Status)
	assert.Equal(t, devPath+"/credentials/aws_colon_bob", out.Path)

	out, err = f.uc.AddCredential(ctx, AddCredentialInput{DeviceID: "dev1"})
	require.NoError(t, err)
	assert.Equal(t, entity.AddCredentialInteractive, out.Status)
	assert.Empty(t, out.Path)

	_, err = f.uc.AddCredential(ctx, AddCredentialInput{DeviceID: "dev1", Name: "AWS:bob", Secret: "JBSWY3DPEHPK3PXP"})
	assert.Equal(t, goerror.CodeConflict, errorCode(t, err))

	_, err = f.uc.AddCredential(ctx, AddCredentialInput{DeviceID: "dev1", Name: "x", Secret: "1!"})
	assert.Equal(t, goerror.CodeInvalidInput, errorCode(t, err))
}
