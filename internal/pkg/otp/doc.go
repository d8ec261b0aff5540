// Package otp computes OATH one-time passwords (RFC 4226 HOTP and RFC 6238
// TOTP) and parses otpauth:// provisioning URIs.
//
// Secrets are base32 strings as shown by authenticator apps; padding,
// whitespace and lower case are accepted.
package otp
