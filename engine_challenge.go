package goCognito

import (
	"context"

	"go.uber.org/zap"
)

const opRespondToAuthChallenge = "RespondToAuthChallenge"

// RespondToAuthChallenge completes a challenge returned by InitiateAuth or
// AdminInitiateAuth.
//
// NEW_PASSWORD_REQUIRED is only accepted for users still in
// FORCE_CHANGE_PASSWORD. It stores the new password, confirms the user and
// then either issues the SMS_MFA challenge the pool requires or mints tokens.
// SMS_MFA consumes the user's MFA code and mints tokens; a wrong code
// fails with CodeMismatch and leaves the stored code in place. The Session
// value is accepted but not checked.
func (e *Engine) RespondToAuthChallenge(ctx context.Context, req RespondToAuthChallengeRequest) (resp *AuthResponse, err error) {
	defer func() { e.metrics.observe(opRespondToAuthChallenge, err) }()

	if err := e.validateRequest(req); err != nil {
		return nil, err
	}

	pool, err := e.poolForClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	switch req.ChallengeName {
	case ChallengeNewPasswordRequired:
		return e.respondNewPassword(ctx, pool, req)
	case ChallengeSMSMFA:
		return e.respondSMSMFA(ctx, pool, req)
	default:
		return nil, newError(KindUnsupported, "Unsupported ChallengeName: %s", req.ChallengeName)
	}
}

func (e *Engine) respondNewPassword(ctx context.Context, pool UserPoolService, req RespondToAuthChallengeRequest) (*AuthResponse, error) {
	username := req.ChallengeResponses[ParamUsername]
	newPassword := req.ChallengeResponses[ParamNewPassword]
	if username == "" {
		return nil, newError(KindInvalidParameter, "Missing required parameter USERNAME")
	}
	if newPassword == "" {
		return nil, newError(KindInvalidParameter, "Missing required parameter NEW_PASSWORD")
	}

	user, err := resolveUser(ctx, pool, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotAuthorized
	}
	if user.UserStatus != UserStatusForceChangePassword {
		e.logger.Debug("new password rejected", zap.String("reason", "not_pending"), zap.String("username", user.Username))
		return nil, ErrNotAuthorized
	}

	updated := user.Clone()
	updated.Password = newPassword
	updated.UserStatus = UserStatusConfirmed
	updated.UserLastModifiedDate = e.clock.Now()

	e.logger.Debug("new password set", zap.String("user_pool_id", pool.Config().ID), zap.String("username", updated.Username))
	if mfaRequired(pool.Config(), updated) {
		return e.smsMFAChallenge(ctx, pool, req.ClientID, updated, req.ClientMetadata)
	}
	return e.completeLogin(ctx, pool, req.ClientID, updated, req.ClientMetadata, TokenSourceNewPasswordChallenge)
}

func (e *Engine) respondSMSMFA(ctx context.Context, pool UserPoolService, req RespondToAuthChallengeRequest) (*AuthResponse, error) {
	username := req.ChallengeResponses[ParamUsername]
	code := req.ChallengeResponses[ParamSMSMFACode]
	if username == "" {
		return nil, newError(KindInvalidParameter, "Missing required parameter USERNAME")
	}
	if code == "" {
		return nil, newError(KindInvalidParameter, "Missing required parameter SMS_MFA_CODE")
	}

	user, err := resolveUser(ctx, pool, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotAuthorized
	}
	if user.MFACode == "" || code != user.MFACode {
		e.logger.Debug("mfa code rejected", zap.String("username", user.Username))
		return nil, ErrCodeMismatch
	}

	updated := user.Clone()
	updated.MFACode = ""
	return e.completeLogin(ctx, pool, req.ClientID, updated, req.ClientMetadata, TokenSourceAuthentication)
}
