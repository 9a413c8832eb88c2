package goCognito

import (
	"errors"
	"strings"
	"time"
)

// Config holds engine policy that is not stored per pool.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	// IssuerDomain prefixes the iss claim; the pool id is appended.
	IssuerDomain    string
	AccessTokenTTL  time.Duration
	IDTokenTTL      time.Duration
	RefreshTokenTTL time.Duration
	// OTPDigits is the length of MFA and attribute verification codes.
	OTPDigits int
}

// DefaultConfig returns the engine defaults: 24h access and Id tokens, 7d
// refresh tokens, six digit codes.
func DefaultConfig() Config {
	return Config{
		IssuerDomain:    "http://localhost:9229",
		AccessTokenTTL:  24 * time.Hour,
		IDTokenTTL:      24 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		OTPDigits:       6,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.IssuerDomain) == "" {
		return errors.New("issuer domain must be set")
	}
	if strings.HasSuffix(c.IssuerDomain, "/") {
		return errors.New("issuer domain must not end with a slash")
	}
	if c.AccessTokenTTL <= 0 || c.IDTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be > 0")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return errors.New("refresh token TTL must be >= access token TTL")
	}
	if c.OTPDigits < 6 || c.OTPDigits > 10 {
		return errors.New("OTP digits must be between 6 and 10")
	}
	return nil
}

func (c Config) issuer(userPoolID string) string {
	return c.IssuerDomain + "/" + userPoolID
}
