package goCognito

import (
	"context"

	"github.com/MrEthical07/goCognito/internal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	opInitiateAuth      = "InitiateAuth"
	opAdminInitiateAuth = "AdminInitiateAuth"

	userMigrationTriggerSource = "UserMigration_Authentication"
	tokenTypeBearer            = "Bearer"
)

// InitiateAuth starts a client-side login.
//
// USER_PASSWORD_AUTH runs the full login: resolve the user, check status and
// password, then either issue a challenge or mint tokens. REFRESH_TOKEN_AUTH
// and REFRESH_TOKEN exchange a refresh token for new access and Id tokens.
func (e *Engine) InitiateAuth(ctx context.Context, req InitiateAuthRequest) (resp *AuthResponse, err error) {
	defer func() { e.metrics.observe(opInitiateAuth, err) }()

	if err := e.validateRequest(req); err != nil {
		return nil, err
	}

	switch req.AuthFlow {
	case AuthFlowUserPassword:
		pool, err := e.poolForClient(ctx, req.ClientID)
		if err != nil {
			return nil, err
		}
		return e.passwordLogin(ctx, pool, req.ClientID, req.AuthParameters, req.ClientMetadata, req.ValidationData)
	case AuthFlowRefreshToken, AuthFlowRefreshTokenAuth:
		return e.refreshLogin(ctx, req.ClientID, req.AuthParameters, req.ClientMetadata)
	default:
		return nil, newError(KindUnsupported, "Unsupported AuthFlow: %s", req.AuthFlow)
	}
}

// AdminInitiateAuth starts a server-side login. The client must belong to
// UserPoolId.
func (e *Engine) AdminInitiateAuth(ctx context.Context, req AdminInitiateAuthRequest) (resp *AuthResponse, err error) {
	defer func() { e.metrics.observe(opAdminInitiateAuth, err) }()

	if err := e.validateRequest(req); err != nil {
		return nil, err
	}

	switch req.AuthFlow {
	case AuthFlowAdminUserPassword, AuthFlowAdminNoSRP, AuthFlowRefreshToken, AuthFlowRefreshTokenAuth:
	default:
		return nil, newError(KindUnsupported, "Unsupported AuthFlow: %s", req.AuthFlow)
	}

	refresh := req.AuthFlow == AuthFlowRefreshToken || req.AuthFlow == AuthFlowRefreshTokenAuth
	pool, err := e.cognito.GetUserPoolForClientID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if pool == nil && refresh {
		return nil, ErrNotAuthorized
	}
	if pool == nil || pool.Config().ID != req.UserPoolID {
		return nil, newError(KindResourceNotFound, "User pool client %s does not exist in %s.", req.ClientID, req.UserPoolID)
	}

	if refresh {
		return e.refreshLogin(ctx, req.ClientID, req.AuthParameters, req.ClientMetadata)
	}
	return e.passwordLogin(ctx, pool, req.ClientID, req.AuthParameters, req.ClientMetadata, req.ValidationData)
}

func (e *Engine) poolForClient(ctx context.Context, clientID string) (UserPoolService, error) {
	pool, err := e.cognito.GetUserPoolForClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, newError(KindResourceNotFound, "User pool client %s does not exist.", clientID)
	}
	return pool, nil
}

func (e *Engine) passwordLogin(ctx context.Context, pool UserPoolService, clientID string, params, metadata, validationData map[string]string) (*AuthResponse, error) {
	username := params[ParamUsername]
	password := params[ParamPassword]
	if username == "" {
		return nil, newError(KindInvalidParameter, "Missing required parameter USERNAME")
	}

	user, err := resolveUser(ctx, pool, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = e.migrateUser(ctx, pool, clientID, username, password, metadata, validationData)
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		e.logger.Debug("login rejected", zap.String("reason", "user_not_found"), zap.String("client_id", clientID))
		return nil, ErrNotAuthorized
	}

	if user.UserStatus == UserStatusResetRequired {
		return nil, ErrPasswordResetRequired
	}
	if user.Password != password {
		e.logger.Debug("login rejected", zap.String("reason", "invalid_password"), zap.String("username", user.Username))
		return nil, ErrInvalidPassword
	}

	if user.UserStatus == UserStatusForceChangePassword {
		return e.challenge(ChallengeNewPasswordRequired, user, map[string]string{
			ParamUserIDForSRP: user.Username,
		})
	}

	if mfaRequired(pool.Config(), *user) {
		return e.smsMFAChallenge(ctx, pool, clientID, *user, metadata)
	}

	return e.completeLogin(ctx, pool, clientID, *user, metadata, TokenSourceAuthentication)
}

func (e *Engine) refreshLogin(ctx context.Context, clientID string, params, metadata map[string]string) (*AuthResponse, error) {
	client, err := e.cognito.GetAppClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNotAuthorized
	}
	pool, err := e.cognito.GetUserPoolForClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, ErrNotAuthorized
	}

	refreshToken := params[ParamRefreshToken]
	if refreshToken == "" {
		return nil, ErrNotAuthorized
	}
	user, err := pool.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		e.logger.Debug("refresh rejected", zap.String("reason", "unknown_refresh_token"), zap.String("client_id", clientID))
		return nil, ErrNotAuthorized
	}

	return e.completeLogin(ctx, pool, clientID, *user, metadata, TokenSourceRefreshTokens)
}

// migrateUser asks the UserMigration hook to vouch for an unknown user. Any
// hook failure is reported as NotAuthorized.
func (e *Engine) migrateUser(ctx context.Context, pool UserPoolService, clientID, username, password string, metadata, validationData map[string]string) (*User, error) {
	if !e.triggerEnabled(TriggerUserMigration) {
		return nil, nil
	}
	hook, ok := e.triggers.(UserMigrationTrigger)
	if !ok {
		return nil, nil
	}

	if validationData == nil {
		validationData = map[string]string{}
	}
	cfg := pool.Config()
	result, err := hook.UserMigration(ctx, UserMigrationInput{
		TriggerSource:  userMigrationTriggerSource,
		ClientID:       clientID,
		UserPoolID:     cfg.ID,
		Username:       username,
		Password:       password,
		ClientMetadata: metadata,
		ValidationData: validationData,
	})
	if err != nil {
		e.logger.Warn("user migration failed", zap.String("user_pool_id", cfg.ID), zap.Error(err))
		return nil, ErrNotAuthorized
	}
	if result == nil {
		return nil, ErrNotAuthorized
	}

	now := e.clock.Now()
	migrated := User{
		Username:             username,
		Password:             password,
		UserStatus:           UserStatusConfirmed,
		Enabled:              true,
		UserCreateDate:       now,
		UserLastModifiedDate: now,
	}
	if len(cfg.UsernameAttributes) > 0 {
		migrated.Username = uuid.NewString()
	}
	if result.FinalUserStatus != "" {
		migrated.UserStatus = result.FinalUserStatus
	}
	attrs := AttributesFromRecord(result.UserAttributes)
	migrated.Attributes = AttributesAppend(
		AttributesRemove(attrs, AttributeSub),
		AttributeType{Name: AttributeSub, Value: uuid.NewString()},
	)

	if err := pool.SaveUser(ctx, migrated); err != nil {
		return nil, err
	}
	e.logger.Info("user migrated", zap.String("user_pool_id", cfg.ID), zap.String("username", migrated.Username))
	return &migrated, nil
}

// mfaRequired is true when the pool enforces MFA, or offers it and the user
// has opted in.
func mfaRequired(pool UserPool, user User) bool {
	switch pool.MfaConfiguration {
	case MfaOn:
		return true
	case MfaOptional:
		return len(user.MFAOptions) > 0
	default:
		return false
	}
}

func (e *Engine) smsMFAChallenge(ctx context.Context, pool UserPoolService, clientID string, user User, metadata map[string]string) (*AuthResponse, error) {
	var details CodeDeliveryDetails
	found := false
	for _, opt := range user.MFAOptions {
		if opt.DeliveryMedium != DeliveryMediumSMS {
			continue
		}
		if dest, ok := AttributeValue(opt.AttributeName, user.Attributes); ok && dest != "" {
			details = CodeDeliveryDetails{
				AttributeName:  opt.AttributeName,
				DeliveryMedium: DeliveryMediumSMS,
				Destination:    dest,
			}
			found = true
			break
		}
	}
	if !found {
		return nil, ErrMFAMethodNotFound
	}

	code, err := e.newOTP()
	if err != nil {
		return nil, err
	}
	updated := user.Clone()
	updated.MFACode = code
	updated.UserLastModifiedDate = e.clock.Now()
	if err := pool.SaveUser(ctx, updated); err != nil {
		return nil, err
	}

	if err := e.deliver(ctx, DeliveryRequest{
		Source:         DeliverySourceAuthentication,
		ClientID:       clientID,
		UserPoolID:     pool.Config().ID,
		User:           updated,
		Code:           code,
		ClientMetadata: metadata,
		Details:        details,
	}); err != nil {
		return nil, err
	}

	return e.challenge(ChallengeSMSMFA, &updated, map[string]string{
		ParamCodeDeliveryMedium:      string(details.DeliveryMedium),
		ParamCodeDeliveryDestination: details.Destination,
		ParamUserIDForSRP:            updated.Username,
	})
}

func (e *Engine) challenge(name ChallengeName, user *User, params map[string]string) (*AuthResponse, error) {
	session, err := internal.NewChallengeSession()
	if err != nil {
		return nil, err
	}
	e.metrics.challengeIssued(name)
	e.logger.Info("challenge issued", zap.String("challenge", string(name)), zap.String("username", user.Username))
	return &AuthResponse{
		ChallengeName:       name,
		ChallengeParameters: params,
		Session:             session,
	}, nil
}

// completeLogin mints tokens for user. Outside the refresh flow the new
// refresh token is remembered on the user and PostAuthentication runs.
func (e *Engine) completeLogin(ctx context.Context, pool UserPoolService, clientID string, user User, metadata map[string]string, source TokenSource) (*AuthResponse, error) {
	cfg := pool.Config()
	groups, err := pool.ListUserGroups(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	tokens, err := e.tokens.Generate(ctx, GenerateTokensInput{
		User:           user,
		Groups:         groups,
		ClientID:       clientID,
		UserPoolID:     cfg.ID,
		ClientMetadata: metadata,
		Source:         source,
	})
	if err != nil {
		return nil, err
	}

	if source != TokenSourceRefreshTokens {
		updated := user.Clone()
		updated.RefreshTokens = append(updated.RefreshTokens, tokens.RefreshToken)
		updated.UserLastModifiedDate = e.clock.Now()
		if err := pool.SaveUser(ctx, updated); err != nil {
			return nil, err
		}

		if e.triggerEnabled(TriggerPostAuthentication) {
			if hook, ok := e.triggers.(PostAuthenticationTrigger); ok {
				if err := hook.PostAuthentication(ctx, PostAuthenticationInput{
					TriggerSource:  postAuthenticationTriggerSource,
					ClientID:       clientID,
					ClientMetadata: metadata,
					UserAttributes: AttributesToRecord(updated.Attributes),
					Username:       updated.Username,
					UserPoolID:     cfg.ID,
				}); err != nil {
					e.logger.Warn("post authentication failed", zap.String("user_pool_id", cfg.ID), zap.Error(err))
					return nil, err
				}
			}
		}
	}

	e.logger.Debug("login succeeded",
		zap.String("user_pool_id", cfg.ID),
		zap.String("client_id", clientID),
		zap.String("username", user.Username),
		zap.String("source", string(source)),
	)

	return &AuthResponse{
		ChallengeParameters: map[string]string{},
		AuthenticationResult: &AuthenticationResult{
			AccessToken:  tokens.AccessToken,
			IDToken:      tokens.IDToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresIn:    int64(e.config.AccessTokenTTL.Seconds()),
			TokenType:    tokenTypeBearer,
		},
	}, nil
}
