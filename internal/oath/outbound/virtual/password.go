package virtual

import (
	"crypto/hmac"
	"crypto/sha1"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyIterations = 1000
	keyLength     = 16
)

// deriveKey turns an OATH password into the token access key. The device
// id is the salt so equal passwords give different keys per token.
func deriveKey(deviceID, password string) []byte {
	if password == "" {
		return nil
	}
	return pbkdf2.Key([]byte(password), []byte(deviceID), keyIterations, keyLength, sha1.New)
}

func keysEqual(a, b []byte) bool {
	return len(a) > 0 && hmac.Equal(a, b)
}
