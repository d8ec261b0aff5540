package entity

import "time"

// CredentialRecord describes one credential stored on a device. It is
// immutable once published.
type CredentialRecord struct {
	Name          string
	Issuer        string
	Account       string
	Type          OathType
	Algorithm     Algorithm
	Digits        int
	Period        int
	RequiresTouch bool
	DeviceID      string
}

// StoredCredential is a credential together with its sealed secret and
// HOTP counter, as kept by the virtual backend.
type StoredCredential struct {
	Record  CredentialRecord
	Secret  string
	Counter uint64
}

// AddCredentialInput carries the fields needed to create a credential.
type AddCredentialInput struct {
	Name          string
	Issuer        string
	Account       string
	Secret        string
	Type          OathType
	Algorithm     Algorithm
	Digits        int
	Period        int
	Counter       uint64
	RequiresTouch bool
}

// AddCredentialResult is the backend answer to an add request. On success
// Message holds the credential name.
type AddCredentialResult struct {
	Status  AddCredentialStatus
	Message string
}

// CodeResult is delivered by the backend once a code generation finishes.
type CodeResult struct {
	DeviceID       string
	CredentialName string
	Code           string
	ValidUntil     time.Time
	Err            string
}

// DeleteResult is delivered by the backend once a delete finishes.
type DeleteResult struct {
	DeviceID       string
	CredentialName string
	Err            string
}

// CredentialEvent is the result a credential object reports for an
// operation.
type CredentialEvent struct {
	Kind       CredentialEventKind `json:"kind"`
	Success    bool                `json:"success"`
	Code       string              `json:"code,omitempty"`
	ValidUntil time.Time           `json:"valid_until,omitzero"`
	Error      string              `json:"error,omitempty"`
}
