package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gooath/internal/oath/entity"
	"github.com/shandysiswandi/gooath/internal/oath/usecase"
	"github.com/shandysiswandi/gooath/internal/pkg/goerror"
	"github.com/shandysiswandi/gooath/internal/pkg/instrument"
	"github.com/shandysiswandi/gooath/internal/pkg/messaging"
	"github.com/shandysiswandi/gooath/internal/pkg/router"
	"github.com/shandysiswandi/gooath/internal/pkg/uid"
	"github.com/shandysiswandi/gooath/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsecase struct {
	lastCred   usecase.CredentialInput
	lastAdd    usecase.AddCredentialInput
	lastRename usecase.RenameDeviceInput
	event      *entity.CredentialEvent
	err        error
	stream     chan entity.ObjectEvent
}

func (f *fakeUsecase) Stream(context.Context) <-chan entity.ObjectEvent { return f.stream }

func (f *fakeUsecase) cred(in usecase.CredentialInput, action string) (*entity.CredentialEvent, error) {
	in.Action = action
	f.lastCred = in
	return f.event, f.err
}

func (f *fakeUsecase) GenerateCode(_ context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error) {
	return f.cred(in, usecase.ActionGenerate)
}

func (f *fakeUsecase) CopyCode(_ context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error) {
	return f.cred(in, usecase.ActionCopy)
}

func (f *fakeUsecase) TypeCode(_ context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error) {
	return f.cred(in, usecase.ActionType)
}

func (f *fakeUsecase) DeleteCredential(_ context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error) {
	return f.cred(in, usecase.ActionDelete)
}

func (f *fakeUsecase) RunCredentialAction(_ context.Context, in usecase.CredentialInput) (*entity.CredentialEvent, error) {
	return f.cred(in, in.Action)
}

func (f *fakeUsecase) ManagedObjects(context.Context) (map[string]entity.InterfaceProperties, error) {
	return map[string]entity.InterfaceProperties{
		"/gooath/oath/devices/d1": {entity.InterfaceDevice: {"Name": "Key"}},
	}, f.err
}

func (f *fakeUsecase) GetDevice(_ context.Context, in usecase.DeviceInput) (*usecase.DeviceOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.DeviceOutput{Path: "/gooath/oath/devices/" + in.DeviceID}, nil
}

func (f *fakeUsecase) RenameDevice(_ context.Context, in usecase.RenameDeviceInput) error {
	f.lastRename = in
	return f.err
}

func (f *fakeUsecase) SavePassword(context.Context, usecase.SavePasswordInput) error { return f.err }

func (f *fakeUsecase) ChangePassword(context.Context, usecase.ChangePasswordInput) error { return f.err }

func (f *fakeUsecase) ForgetDevice(context.Context, usecase.DeviceInput) error { return f.err }

func (f *fakeUsecase) AddCredential(_ context.Context, in usecase.AddCredentialInput) (*usecase.AddCredentialOutput, error) {
	f.lastAdd = in
	if in.Secret == "" {
		return &usecase.AddCredentialOutput{Status: entity.AddCredentialInteractive}, nil
	}
	return &usecase.AddCredentialOutput{Status: entity.AddCredentialSuccess, Path: "/p"}, nil
}

func newRouter(uc uc, virtual VirtualControl) *router.Router {
	r := router.NewRouter(router.Config{UUID: uid.NewUUID(), Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, uc, virtual)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_CredentialActions(t *testing.T) {
	validUntil := time.Unix(1800000030, 0).UTC()
	fake := &fakeUsecase{event: &entity.CredentialEvent{
		Kind: entity.CredentialCodeGenerated, Success: true, Code: "123456", ValidUntil: validUntil,
	}}
	r := newRouter(fake, nil)

	rec := do(r, http.MethodPost, "/api/v1/oath/devices/d1/credentials/github/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data CredentialEventResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "123456", body.Data.Code)
	require.NotNil(t, body.Data.ValidUntil)
	assert.True(t, validUntil.Equal(*body.Data.ValidUntil))
	assert.Equal(t, usecase.CredentialInput{DeviceID: "d1", CredentialID: "github", Action: usecase.ActionGenerate}, fake.lastCred)

	rec = do(r, http.MethodPost, "/api/v1/oath/devices/d1/credentials/github/type", `{"fallback_to_copy":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fake.lastCred.FallbackToCopy)
	assert.Equal(t, usecase.ActionType, fake.lastCred.Action)

	rec = do(r, http.MethodPost, "/api/v1/oath/devices/d1/credentials/github/type", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, fake.lastCred.FallbackToCopy)

	rec = do(r, http.MethodDelete, "/api/v1/oath/devices/d1/credentials/github", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.ActionDelete, fake.lastCred.Action)

	fake.err = goerror.NewTimeout("Device did not answer in time")
	rec = do(r, http.MethodPost, "/api/v1/oath/devices/d1/credentials/github/copy", "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHTTP_DeviceEndpoints(t *testing.T) {
	fake := &fakeUsecase{}
	r := newRouter(fake, nil)

	rec := do(r, http.MethodGet, "/api/v1/oath/objects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gooath.Device"`)

	rec = do(r, http.MethodPatch, "/api/v1/oath/devices/d1", `{"name":"Home"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, usecase.RenameDeviceInput{DeviceID: "d1", Name: "Home"}, fake.lastRename)

	rec = do(r, http.MethodPatch, "/api/v1/oath/devices/d1", `{"nickname":"Home"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/oath/devices/d1/credentials", `{"name":"GitHub:alice","secret":"JBSWY3DPEHPK3PXP"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "GitHub:alice", fake.lastAdd.Name)

	rec = do(r, http.MethodPost, "/api/v1/oath/devices/d1/credentials", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Interactive"`)

	fake.err = goerror.NewBusiness("Device not found", goerror.CodeNotFound)
	rec = do(r, http.MethodGet, "/api/v1/oath/devices/zz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/virtual/devices", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStream_WritesNamedEvents(t *testing.T) {
	fake := &fakeUsecase{stream: make(chan entity.ObjectEvent, 2)}
	fake.stream <- entity.ObjectEvent{Type: entity.EventObjectAdded, Path: "/gooath/oath/devices/d1", Reason: entity.ReasonConnected}
	close(fake.stream)

	end := &HTTPEndpoint{uc: fake}
	rec := httptest.NewRecorder()
	end.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/oath/stream", nil))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.Contains(t, out, ": connected\n\n")
	assert.Contains(t, out, "event: object_added\ndata: {")
	assert.Contains(t, out, `"reason":"connected"`)
}

func TestMQHandler_Command(t *testing.T) {
	broker := messaging.NewMemory()
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	results := make(chan event.OATHCommandResultMessage, 2)
	go func() {
		_ = broker.Consume(ctx, event.OATHCommandResultDestination, func(_ context.Context, msg messaging.Message) error {
			var res event.OATHCommandResultMessage
			if err := json.Unmarshal(msg.Body(), &res); err == nil {
				results <- res
			}
			return nil
		})
	}()
	require.Eventually(t, func() bool { return broker.Subscribers(event.OATHCommandResultDestination) == 1 }, time.Second, 5*time.Millisecond)

	fake := &fakeUsecase{event: &entity.CredentialEvent{Kind: entity.CredentialClipboardCopied, Success: true}}
	h := &MQHandler{uc: fake, uuid: uid.NewUUID(), ins: instrument.NewNoop(), publisher: broker}

	cmd, _ := json.Marshal(event.OATHCommandMessage{Action: "copy", DeviceID: "d1", Credential: "github"})
	require.NoError(t, h.Command(ctx, memoryMessage(t, cmd)))
	assert.Equal(t, usecase.ActionCopy, fake.lastCred.Action)

	res := <-results
	assert.True(t, res.Success)
	assert.Equal(t, "d1", res.DeviceID)

	fake.err = goerror.NewBusiness("Credential not found", goerror.CodeNotFound)
	require.NoError(t, h.Command(ctx, memoryMessage(t, cmd)))
	res = <-results
	assert.False(t, res.Success)
	assert.Equal(t, "Credential not found", res.Error)

	fake.err = goerror.NewServer(assert.AnError)
	assert.Error(t, h.Command(ctx, memoryMessage(t, cmd)))

	assert.NoError(t, h.Command(ctx, memoryMessage(t, []byte("{not json"))))
}

// memoryMessage round-trips body through a broker to get a real Message.
func memoryMessage(t *testing.T, body []byte) messaging.Message {
	t.Helper()
	broker := messaging.NewMemory()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan messaging.Message, 1)
	go func() {
		_ = broker.Consume(ctx, "in", func(_ context.Context, msg messaging.Message) error {
			got <- msg
			return nil
		})
	}()
	require.Eventually(t, func() bool { return broker.Subscribers("in") == 1 }, time.Second, 5*time.Millisecond)

	_, err := broker.Publish(context.Background(), "in", messaging.OutgoingMessage{Body: body})
	require.NoError(t, err)
	return <-got
}
