package goCognito

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrEthical07/goCognito/internal"
	"github.com/MrEthical07/goCognito/token"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// UserPoolService is the per-pool view of the user store. Lookups return
// (nil, nil) when nothing matches.
type UserPoolService interface {
	Config() UserPool
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*User, error)
	FindUserByAttribute(ctx context.Context, name, value string) (*User, error)
	ListUserGroups(ctx context.Context, username string) ([]string, error)
	SaveUser(ctx context.Context, user User) error
}

// CognitoService resolves pools and app clients. Lookups return (nil, nil)
// when nothing matches.
type CognitoService interface {
	GetUserPoolForClientID(ctx context.Context, clientID string) (UserPoolService, error)
	GetUserPool(ctx context.Context, userPoolID string) (UserPoolService, error)
	GetAppClient(ctx context.Context, clientID string) (*AppClient, error)
}

// DeliverySource says why a code is being delivered.
type DeliverySource string

const (
	DeliverySourceAuthentication      DeliverySource = "Authentication"
	DeliverySourceUpdateUserAttribute DeliverySource = "UpdateUserAttribute"
	DeliverySourceVerifyUserAttribute DeliverySource = "VerifyUserAttribute"
)

// DeliveryRequest is one code handed to the delivery collaborator.
type DeliveryRequest struct {
	Source         DeliverySource
	ClientID       string
	UserPoolID     string
	User           User
	Code           string
	ClientMetadata map[string]string
	Details        CodeDeliveryDetails
}

// CodeDelivery sends MFA and verification codes to users.
type CodeDelivery interface {
	Deliver(ctx context.Context, req DeliveryRequest) error
}

// Engine implements the authentication flows and the attribute
// verification lifecycle on top of the injected collaborators.
//
// Engine methods are safe for concurrent use. There is no engine-wide
// lock: concurrent writes to the same user race at the store and the last
// write wins.
type Engine struct {
	config   Config
	cognito  CognitoService
	triggers Triggers
	delivery CodeDelivery
	verifier token.Verifier
	tokens   *TokenIssuer
	clock    clockwork.Clock
	logger   *zap.Logger
	metrics  *Metrics
	validate *validator.Validate
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Tokens returns the issuer the engine mints tokens with.
func (e *Engine) Tokens() *TokenIssuer {
	return e.tokens
}

func (e *Engine) validateRequest(req any) error {
	if err := e.validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return newError(KindInvalidParameter, "%s is required", verrs[0].Field())
		}
		return wrapError(KindInvalidParameter, err, "invalid request")
	}
	return nil
}

func (e *Engine) newOTP() (string, error) {
	code, err := internal.NewOTP(e.config.OTPDigits)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return code, nil
}

func (e *Engine) deliver(ctx context.Context, req DeliveryRequest) error {
	if err := e.delivery.Deliver(ctx, req); err != nil {
		return fmt.Errorf("deliver code: %w", err)
	}
	e.metrics.codeDelivered(req.Details.DeliveryMedium)
	e.logger.Debug("code delivered",
		zap.String("source", string(req.Source)),
		zap.String("user_pool_id", req.UserPoolID),
		zap.String("username", req.User.Username),
		zap.String("medium", string(req.Details.DeliveryMedium)),
	)
	return nil
}

// authenticatedUser resolves the pool and user an access token was issued
// for. The token must verify, be an access token and belong to a known
// client.
func (e *Engine) authenticatedUser(ctx context.Context, accessToken string) (UserPoolService, *User, string, error) {
	claims, err := e.verifier.Parse(accessToken)
	if err != nil {
		e.logger.Debug("access token rejected", zap.Error(err))
		return nil, nil, "", ErrNotAuthorized
	}
	if use, _ := claims["token_use"].(string); use != "access" {
		return nil, nil, "", ErrNotAuthorized
	}
	clientID, _ := claims["client_id"].(string)
	sub, _ := claims["sub"].(string)
	if clientID == "" || sub == "" {
		return nil, nil, "", ErrNotAuthorized
	}

	pool, err := e.cognito.GetUserPoolForClientID(ctx, clientID)
	if err != nil {
		return nil, nil, "", err
	}
	if pool == nil {
		return nil, nil, "", ErrNotAuthorized
	}
	if iss, _ := claims["iss"].(string); !strings.HasSuffix(iss, "/"+pool.Config().ID) {
		return nil, nil, "", ErrNotAuthorized
	}

	user, err := resolveUser(ctx, pool, sub)
	if err != nil {
		return nil, nil, "", err
	}
	if user == nil {
		return nil, nil, "", ErrNotAuthorized
	}
	return pool, user, clientID, nil
}
