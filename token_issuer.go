package goCognito

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goCognito/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// TokenSource names the event tokens are minted for. It is forwarded to the
// claim override hook as "TokenGeneration_<source>".
type TokenSource string

const (
	TokenSourceAuthentication       TokenSource = "Authentication"
	TokenSourceNewPasswordChallenge TokenSource = "NewPasswordChallenge"
	TokenSourceRefreshTokens        TokenSource = "RefreshTokens"
)

// reservedClaims can never be added, replaced or suppressed by the claim
// override hook.
var reservedClaims = map[string]struct{}{
	"acr":              {},
	"amr":              {},
	"aud":              {},
	"at_hash":          {},
	"auth_time":        {},
	"azp":              {},
	"cognito:username": {},
	"exp":              {},
	"iat":              {},
	"identities":       {},
	"iss":              {},
	"jti":              {},
	"nbf":              {},
	"nonce":            {},
	"origin_jti":       {},
	"sub":              {},
	"token_use":        {},
}

// IsReservedClaim reports whether the claim override hook is barred from
// touching name.
func IsReservedClaim(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}

// GenerateTokensInput is the input of [TokenIssuer.Generate].
type GenerateTokensInput struct {
	User           User
	Groups         []string
	ClientID       string
	UserPoolID     string
	ClientMetadata map[string]string
	Source         TokenSource
}

// Tokens is the signed output of [TokenIssuer.Generate]. RefreshToken is
// empty when the source is [TokenSourceRefreshTokens].
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// TokenIssuer builds and signs access, Id and refresh tokens.
type TokenIssuer struct {
	config   Config
	signer   token.Signer
	clock    clockwork.Clock
	triggers Triggers
	logger   *zap.Logger
}

// NewTokenIssuer creates an issuer. triggers may be nil.
func NewTokenIssuer(cfg Config, signer token.Signer, clock clockwork.Clock, triggers Triggers, logger *zap.Logger) *TokenIssuer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenIssuer{
		config:   cfg,
		signer:   signer,
		clock:    clock,
		triggers: triggers,
		logger:   logger,
	}
}

// Generate mints the token set for in.User. Only the Id token passes
// through the PreTokenGeneration hook, and reserved claims always keep the
// values computed here.
func (t *TokenIssuer) Generate(ctx context.Context, in GenerateTokensInput) (*Tokens, error) {
	now := t.clock.Now()
	authTime := now.Unix()
	eventID := uuid.NewString()
	issuer := t.config.issuer(in.UserPoolID)
	sub := in.User.Sub()
	email, hasEmail := AttributeValue(AttributeEmail, in.User.Attributes)
	emailVerified, _ := AttributeValue(AttributeEmailVerified, in.User.Attributes)

	idClaims := jwt.MapClaims{
		"aud":              in.ClientID,
		"auth_time":        authTime,
		"cognito:username": in.User.Username,
		"email_verified":   emailVerified == "true",
		"event_id":         eventID,
		"iat":              authTime,
		"iss":              issuer,
		"jti":              uuid.NewString(),
		"sub":              sub,
		"token_use":        "id",
	}
	if hasEmail {
		idClaims["email"] = email
	}
	for _, attr := range CustomAttributes(in.User.Attributes) {
		idClaims[attr.Name] = attr.Value
	}
	if len(in.Groups) > 0 {
		idClaims["cognito:groups"] = in.Groups
	}

	if t.triggers != nil && t.triggers.Enabled(TriggerPreTokenGeneration) {
		if hook, ok := t.triggers.(PreTokenGenerationTrigger); ok {
			details, err := hook.PreTokenGeneration(ctx, PreTokenGenerationInput{
				TriggerSource:  "TokenGeneration_" + string(in.Source),
				ClientID:       in.ClientID,
				ClientMetadata: in.ClientMetadata,
				UserAttributes: AttributesToRecord(in.User.Attributes),
				Username:       in.User.Username,
				UserPoolID:     in.UserPoolID,
				GroupConfiguration: GroupConfiguration{
					GroupsToOverride:   append([]string{}, in.Groups...),
					IAMRolesToOverride: []string{},
				},
			})
			if err != nil {
				return nil, fmt.Errorf("pre token generation: %w", err)
			}
			idClaims = applyClaimOverrides(idClaims, details)
		}
	}

	accessClaims := jwt.MapClaims{
		"auth_time": authTime,
		"client_id": in.ClientID,
		"event_id":  eventID,
		"iat":       authTime,
		"iss":       issuer,
		"jti":       uuid.NewString(),
		"scope":     accessTokenScope,
		"sub":       sub,
		"token_use": "access",
		"username":  in.User.Username,
	}
	if len(in.Groups) > 0 {
		accessClaims["cognito:groups"] = in.Groups
	}

	out := &Tokens{}
	var err error
	if out.AccessToken, err = t.sign("access", accessClaims, now.Add(t.config.AccessTokenTTL)); err != nil {
		return nil, err
	}
	if out.IDToken, err = t.sign("id", idClaims, now.Add(t.config.IDTokenTTL)); err != nil {
		return nil, err
	}

	if in.Source != TokenSourceRefreshTokens {
		refreshClaims := jwt.MapClaims{
			"cognito:username": in.User.Username,
			"iat":              authTime,
			"iss":              issuer,
			"jti":              uuid.NewString(),
		}
		if hasEmail {
			refreshClaims["email"] = email
		}
		if out.RefreshToken, err = t.sign("refresh", refreshClaims, now.Add(t.config.RefreshTokenTTL)); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (t *TokenIssuer) sign(kind string, claims jwt.MapClaims, expiresAt time.Time) (string, error) {
	signed, err := t.signer.Sign(claims, expiresAt)
	if err != nil {
		t.logger.Error("token signing failed", zap.String("token", kind), zap.Error(err))
		return "", wrapError(KindSigningError, err, "sign %s token: %v", kind, err)
	}
	return signed, nil
}

func applyClaimOverrides(claims jwt.MapClaims, details *ClaimsOverrideDetails) jwt.MapClaims {
	if details == nil {
		return claims
	}
	out := make(jwt.MapClaims, len(claims)+len(details.ClaimsToAddOrOverride))
	for name, value := range claims {
		out[name] = value
	}
	for name, value := range details.ClaimsToAddOrOverride {
		if IsReservedClaim(name) {
			continue
		}
		out[name] = value
	}
	for _, name := range details.ClaimsToSuppress {
		if IsReservedClaim(name) {
			continue
		}
		delete(out, name)
	}
	return out
}
