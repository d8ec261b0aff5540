package otp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// DefaultPeriod is the TOTP step used when Params.Period is zero.
const DefaultPeriod = 30

var (
	// ErrDigits is returned for digit counts outside 6..8.
	ErrDigits = errors.New("otp: digits must be between 6 and 8")
	// ErrAlgorithm is returned for hash names other than SHA1, SHA256 and SHA512.
	ErrAlgorithm = errors.New("otp: unsupported algorithm")
	// ErrSecret is returned when the secret is not valid base32.
	ErrSecret = errors.New("otp: invalid base32 secret")
)

// Params are the per-credential code parameters.
type Params struct {
	Algorithm string
	Digits    int
	Period    uint
}

// OTP defines the contract for OATH code generation.
type OTP interface {
	// TOTP returns the code for at and the end of its validity window.
	TOTP(secret string, at time.Time, p Params) (code string, validUntil time.Time, err error)
	// HOTP returns the code for counter.
	HOTP(secret string, counter uint64, p Params) (string, error)
	// NewSecret returns a random base32 secret of 20 bytes.
	NewSecret() (string, error)
}

// OATH implements OTP with github.com/pquerna/otp.
type OATH struct{}

// New returns an OATH code generator.
func New() *OATH {
	return &OATH{}
}

// TOTP returns the code for at and the end of its validity window.
func (o *OATH) TOTP(secret string, at time.Time, p Params) (string, time.Time, error) {
	alg, digits, err := p.resolve()
	if err != nil {
		return "", time.Time{}, err
	}
	period := p.Period
	if period == 0 {
		period = DefaultPeriod
	}

	code, err := totp.GenerateCodeCustom(normalize(secret), at, totp.ValidateOpts{
		Period:    period,
		Digits:    digits,
		Algorithm: alg,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrSecret, err)
	}

	step := int64(period)
	validUntil := time.Unix((at.Unix()/step+1)*step, 0)

	return code, validUntil, nil
}

// HOTP returns the code for counter.
func (o *OATH) HOTP(secret string, counter uint64, p Params) (string, error) {
	alg, digits, err := p.resolve()
	if err != nil {
		return "", err
	}

	code, err := hotp.GenerateCodeCustom(normalize(secret), counter, hotp.ValidateOpts{
		Digits:    digits,
		Algorithm: alg,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSecret, err)
	}

	return code, nil
}

// NewSecret returns a random base32 secret of 20 bytes.
func (o *OATH) NewSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "gooath",
		AccountName: "virtual",
		SecretSize:  20, // RFC 4226/6238 recommendation
	})
	if err != nil {
		return "", err
	}

	return key.Secret(), nil
}

// ValidSecret reports whether secret decodes as base32.
func ValidSecret(secret string) bool {
	_, err := hotp.GenerateCodeCustom(normalize(secret), 0, hotp.ValidateOpts{Digits: otp.DigitsSix})
	return normalize(secret) != "" && err == nil
}

func (p Params) resolve() (otp.Algorithm, otp.Digits, error) {
	digits := p.Digits
	if digits == 0 {
		digits = 6
	}
	if digits < 6 || digits > 8 {
		return 0, 0, ErrDigits
	}

	var alg otp.Algorithm
	switch strings.ToUpper(strings.ReplaceAll(p.Algorithm, "-", "")) {
	case "", "SHA1":
		alg = otp.AlgorithmSHA1
	case "SHA256":
		alg = otp.AlgorithmSHA256
	case "SHA512":
		alg = otp.AlgorithmSHA512
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrAlgorithm, p.Algorithm)
	}

	return alg, otp.Digits(digits), nil
}

func normalize(secret string) string {
	return strings.ToUpper(strings.Join(strings.Fields(secret), ""))
}

// Key is the content of an otpauth:// URI.
type Key struct {
	Type      string
	Issuer    string
	Account   string
	Secret    string
	Algorithm string
	Digits    int
	Period    uint
	Counter   uint64
}

// ParseURI decodes an otpauth://totp/... or otpauth://hotp/... URI.
func ParseURI(uri string) (Key, error) {
	k, err := otp.NewKeyFromURL(strings.TrimSpace(uri))
	if err != nil {
		return Key{}, err
	}
	if k.Type() != "totp" && k.Type() != "hotp" {
		return Key{}, fmt.Errorf("otp: unsupported uri type %q", k.Type())
	}
	if !ValidSecret(k.Secret()) {
		return Key{}, ErrSecret
	}

	key := Key{
		Type:      strings.ToUpper(k.Type()),
		Issuer:    k.Issuer(),
		Account:   k.AccountName(),
		Secret:    normalize(k.Secret()),
		Algorithm: "SHA1",
		Digits:    6,
		Period:    DefaultPeriod,
	}

	u, err := url.Parse(k.URL())
	if err != nil {
		return Key{}, err
	}
	q := u.Query()

	if v := q.Get("algorithm"); v != "" {
		key.Algorithm = strings.ToUpper(v)
	}
	if v := q.Get("digits"); v != "" {
		if key.Digits, err = strconv.Atoi(v); err != nil {
			return Key{}, fmt.Errorf("otp: digits: %w", err)
		}
	}
	if v := q.Get("period"); v != "" {
		p, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Key{}, fmt.Errorf("otp: period: %w", err)
		}
		key.Period = uint(p)
	}
	if v := q.Get("counter"); v != "" {
		if key.Counter, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Key{}, fmt.Errorf("otp: counter: %w", err)
		}
	}

	return key, nil
}
