package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addCredentialInput struct {
	Name       string `validate:"oathname"`
	Secret     string `validate:"base32secret"`
	Digits     int    `validate:"omitempty,min=6,max=8"`
	DeviceName string `validate:"omitempty,devicename"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   addCredentialInput
		wantErr map[string]string
	}{
		{
			name:  "valid",
			input: addCredentialInput{Name: "GitHub:alice", Secret: "JBSW Y3DP EHPK 3PXP", Digits: 6},
		},
		{
			name:  "bad secret",
			input: addCredentialInput{Name: "GitHub:alice", Secret: "not-base32!"},
			wantErr: map[string]string{
				"secret": "Secret must be a base32 encoded secret",
			},
		},
		{
			name:  "name too long and bad digits",
			input: addCredentialInput{Name: strings.Repeat("a", 65), Secret: "JBSWY3DPEHPK3PXP", Digits: 9},
			wantErr: map[string]string{
				"name":   "Name must be 1-64 bytes without surrounding spaces",
				"digits": "Digits must be 8 or less",
			},
		},
		{
			name:  "padded name and blank device name",
			input: addCredentialInput{Name: " x ", Secret: "JBSWY3DPEHPK3PXP", DeviceName: "   "},
			wantErr: map[string]string{
				"name":        "Name must be 1-64 bytes without surrounding spaces",
				"device_name": "DeviceName must not be blank",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Values())
		})
	}
}

func TestV10ValidationError_EmptyMessage(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
}
