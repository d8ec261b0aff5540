package sealer

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte { return bytes.Repeat([]byte{b}, 32) }

func TestAESGCM_RoundTrip(t *testing.T) {
	s, err := NewAESGCM(testKey(1))
	require.NoError(t, err)
	scope := Scope{DeviceID: "vt_1", Purpose: PurposeCredentialSecret}

	ct, err := s.Seal([]byte("JBSWY3DPEHPK3PXP"), scope)
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "JBSWY3DPEHPK3PXP")

	pt, err := s.Open(ct, scope)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", string(pt))
}

func TestAESGCM_ScopeAndKeyBinding(t *testing.T) {
	s, _ := NewAESGCM(testKey(1))
	other, _ := NewAESGCM(testKey(2))
	scope := Scope{DeviceID: "vt_1", Purpose: PurposeDeviceKey}

	ct, err := s.Seal([]byte("key"), scope)
	require.NoError(t, err)

	_, err = s.Open(ct, Scope{DeviceID: "vt_2", Purpose: PurposeDeviceKey})
	assert.ErrorIs(t, err, ErrOpenFailed)

	_, err = s.Open(ct, Scope{DeviceID: "vt_1", Purpose: PurposeCredentialSecret})
	assert.ErrorIs(t, err, ErrOpenFailed)

	_, err = other.Open(ct, scope)
	assert.ErrorIs(t, err, ErrOpenFailed)

	ct[len(ct)-1] ^= 0xff
	_, err = s.Open(ct, scope)
	assert.ErrorIs(t, err, ErrOpenFailed)
}

func TestAESGCM_Errors(t *testing.T) {
	_, err := NewAESGCM([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewAESGCMFromBase64("%%%")
	assert.ErrorIs(t, err, ErrInvalidKey)

	s, err := NewAESGCMFromBase64(base64.StdEncoding.EncodeToString(testKey(3)))
	require.NoError(t, err)

	_, err = s.Seal(nil, Scope{})
	assert.ErrorIs(t, err, ErrEmptyPlaintext)

	_, err = s.Open([]byte{0, 1, 2}, Scope{})
	assert.ErrorIs(t, err, ErrCiphertextShort)

	ct, _ := s.Seal([]byte("x"), Scope{})
	ct[1] = 9
	_, err = s.Open(ct, Scope{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
