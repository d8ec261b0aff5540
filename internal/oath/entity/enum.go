package entity

import "strings"

// OathType is the OATH algorithm family of a credential.
type OathType string

const (
	OathTypeTOTP OathType = "TOTP"
	OathTypeHOTP OathType = "HOTP"
)

// ParseOathType is case-insensitive and defaults to TOTP.
func ParseOathType(s string) OathType {
	if strings.EqualFold(strings.TrimSpace(s), string(OathTypeHOTP)) {
		return OathTypeHOTP
	}
	return OathTypeTOTP
}

// Algorithm is the HMAC hash used to derive codes.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

// ParseAlgorithm is case-insensitive, accepts "SHA-256" style names and
// defaults to SHA1.
func ParseAlgorithm(s string) Algorithm {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case string(AlgorithmSHA256):
		return AlgorithmSHA256
	case string(AlgorithmSHA512):
		return AlgorithmSHA512
	default:
		return AlgorithmSHA1
	}
}

// AddCredentialStatus is the outcome of adding a credential to a device.
type AddCredentialStatus int

const (
	// AddCredentialSuccess means the credential was stored on the device.
	AddCredentialSuccess AddCredentialStatus = iota
	// AddCredentialInteractive means the input was incomplete and the
	// caller has to collect the missing fields from the user.
	AddCredentialInteractive
	// AddCredentialError means the device refused the credential.
	AddCredentialError
)

func (s AddCredentialStatus) String() string {
	switch s {
	case AddCredentialSuccess:
		return "Success"
	case AddCredentialInteractive:
		return "Interactive"
	default:
		return "Error"
	}
}

// CredentialEventKind names the result signals a credential object emits.
type CredentialEventKind string

const (
	CredentialCodeGenerated   CredentialEventKind = "CodeGenerated"
	CredentialClipboardCopied CredentialEventKind = "ClipboardCopied"
	CredentialCodeTyped       CredentialEventKind = "CodeTyped"
	CredentialDeleted         CredentialEventKind = "Deleted"
)

// Object interface names.
const (
	InterfaceManager    = "gooath.Manager"
	InterfaceDevice     = "gooath.Device"
	InterfaceSession    = "gooath.DeviceSession"
	InterfaceCredential = "gooath.Credential"
)

// Device session states.
const (
	SessionStateReady        = "Ready"
	SessionStateDisconnected = "Disconnected"
	SessionStateLocked       = "Locked"
)
