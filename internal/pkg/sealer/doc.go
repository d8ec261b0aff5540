// Package sealer encrypts small secrets at rest (credential seeds, remembered
// device keys) with AES-256-GCM. Every ciphertext is bound to a Scope so a
// blob copied to another device or purpose fails to open.
package sealer
