package token

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultKeyBits = 2048

// Signer produces a signed bearer string for a claim set.
type Signer interface {
	Sign(claims jwt.MapClaims, expiresAt time.Time) (string, error)
}

// Verifier checks a bearer string and returns its claims.
type Verifier interface {
	Parse(tokenStr string) (jwt.MapClaims, error)
}

// Config configures an [RSAKeys] pair.
//
// PrivateKey is PEM encoded (PKCS#1 or PKCS#8). When empty a fresh key is
// generated, which is what a throwaway local emulator usually wants.
type Config struct {
	KeyID      string
	PrivateKey []byte
	Leeway     time.Duration
	Now        func() time.Time
}

// RSAKeys signs with RS256 and verifies tokens it signed.
type RSAKeys struct {
	keyID   string
	private *rsa.PrivateKey
	leeway  time.Duration
	now     func() time.Time
}

// JWK is one entry of a JSON Web Key Set.
type JWK struct {
	Alg string `json:"alg"`
	E   string `json:"e"`
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	Use string `json:"use"`
}

// JWKS is a JSON Web Key Set document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewRSAKeys builds a key pair from cfg.
func NewRSAKeys(cfg Config) (*RSAKeys, error) {
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	if cfg.KeyID == "" {
		return nil, errors.New("token: key id is required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("token: invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var (
		key *rsa.PrivateKey
		err error
	)
	if len(cfg.PrivateKey) > 0 {
		key, err = jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("token: parse private key: %w", err)
		}
	} else {
		key, err = rsa.GenerateKey(rand.Reader, defaultKeyBits)
		if err != nil {
			return nil, fmt.Errorf("token: generate private key: %w", err)
		}
	}

	return &RSAKeys{
		keyID:   cfg.KeyID,
		private: key,
		leeway:  cfg.Leeway,
		now:     cfg.Now,
	}, nil
}

// KeyID returns the kid header written on every token.
func (k *RSAKeys) KeyID() string {
	return k.keyID
}

// PublicKey returns the verification key.
func (k *RSAKeys) PublicKey() *rsa.PublicKey {
	return &k.private.PublicKey
}

// Sign sets exp on claims and signs them with RS256.
func (k *RSAKeys) Sign(claims jwt.MapClaims, expiresAt time.Time) (string, error) {
	signed := make(jwt.MapClaims, len(claims)+1)
	for name, value := range claims {
		signed[name] = value
	}
	signed["exp"] = expiresAt.Unix()

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, signed)
	tok.Header["kid"] = k.keyID
	return tok.SignedString(k.private)
}

// Parse verifies signature, algorithm, kid and expiry and returns the claims.
func (k *RSAKeys) Parse(tokenStr string) (jwt.MapClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(k.now),
	}
	if k.leeway > 0 {
		options = append(options, jwt.WithLeeway(k.leeway))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		if kid != k.keyID {
			return nil, errors.New("unknown kid")
		}
		return k.PublicKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWKS returns the public half of the pair as a key set.
func (k *RSAKeys) JWKS() JWKS {
	pub := k.PublicKey()
	return JWKS{Keys: []JWK{{
		Alg: jwt.SigningMethodRS256.Alg(),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		Kid: k.keyID,
		Kty: "RSA",
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		Use: "sig",
	}}}
}
