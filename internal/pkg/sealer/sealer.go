package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Purpose separates sealed values of different kinds.
type Purpose string

const (
	// PurposeCredentialSecret scopes OATH credential seeds.
	PurposeCredentialSecret Purpose = "credential_secret"
	// PurposeDeviceKey scopes remembered device access keys.
	PurposeDeviceKey Purpose = "device_key"
)

// Scope is bound to the ciphertext as GCM additional data.
type Scope struct {
	DeviceID string
	Purpose  Purpose
}

// Sealer encrypts and decrypts scoped secrets.
type Sealer interface {
	Seal(plaintext []byte, scope Scope) ([]byte, error)
	Open(ciphertext []byte, scope Scope) ([]byte, error)
}

// Ciphertext layout: uint16 version | 12-byte nonce | gcm.Seal output.
const version uint16 = 1

const (
	nonceSize = 12
	keySize   = 32
)

var (
	ErrInvalidKey        = errors.New("sealer: key must be 32 bytes")
	ErrEmptyPlaintext    = errors.New("sealer: plaintext is empty")
	ErrCiphertextShort   = errors.New("sealer: ciphertext too short")
	ErrUnsupportedFormat = errors.New("sealer: unsupported ciphertext version")
	ErrOpenFailed        = errors.New("sealer: open failed")
)

// AESGCM implements Sealer with AES-256-GCM and a single static key.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds an AES-256-GCM sealer from a 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealer: aes init failed: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sealer: gcm init failed: %w", err)
	}

	return &AESGCM{aead: aead}, nil
}

// NewAESGCMFromBase64 decodes a standard base64 key.
func NewAESGCMFromBase64(key string) (*AESGCM, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return NewAESGCM(raw)
}

// Seal encrypts plaintext for scope.
func (s *AESGCM) Seal(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("sealer: nonce generation failed: %w", err)
	}

	sealed := s.aead.Seal(nil, nonce, plaintext, scope.aad())

	out := make([]byte, 2+nonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], version)
	copy(out[2:2+nonceSize], nonce)
	copy(out[2+nonceSize:], sealed)

	return out, nil
}

// Open decrypts ciphertext sealed for scope. A wrong key, a wrong scope and
// tampering all yield ErrOpenFailed.
func (s *AESGCM) Open(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) < 2+nonceSize+1 {
		return nil, ErrCiphertextShort
	}
	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, v)
	}

	plain, err := s.aead.Open(nil, ciphertext[2:2+nonceSize], ciphertext[2+nonceSize:], scope.aad())
	if err != nil {
		return nil, ErrOpenFailed
	}

	return plain, nil
}

func (s Scope) aad() []byte {
	sum := sha256.Sum256(fmt.Appendf(nil, "device=%s\npurpose=%s\n", s.DeviceID, s.Purpose))
	return sum[:]
}
