package goCognito

import (
	"context"

	"go.uber.org/zap"
)

const (
	opUpdateUserAttributes             = "UpdateUserAttributes"
	opAdminUpdateUserAttributes        = "AdminUpdateUserAttributes"
	opVerifyUserAttribute              = "VerifyUserAttribute"
	opGetUserAttributeVerificationCode = "GetUserAttributeVerificationCode"
)

// UpdateUserAttributes changes the attributes of the user the access token
// was issued for.
func (e *Engine) UpdateUserAttributes(ctx context.Context, req UpdateUserAttributesRequest) (resp *UpdateUserAttributesResponse, err error) {
	defer func() { e.metrics.observe(opUpdateUserAttributes, err) }()

	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	pool, user, clientID, err := e.authenticatedUser(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}
	return e.updateAttributes(ctx, pool, clientID, *user, req.UserAttributes, req.ClientMetadata)
}

// AdminUpdateUserAttributes changes the attributes of a user addressed by
// pool and username.
func (e *Engine) AdminUpdateUserAttributes(ctx context.Context, req AdminUpdateUserAttributesRequest) (resp *UpdateUserAttributesResponse, err error) {
	defer func() { e.metrics.observe(opAdminUpdateUserAttributes, err) }()

	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	pool, err := e.cognito.GetUserPool(ctx, req.UserPoolID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, newError(KindResourceNotFound, "User pool %s does not exist.", req.UserPoolID)
	}
	user, err := resolveUser(ctx, pool, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(KindNotAuthorized, "User does not exist.")
	}
	return e.updateAttributes(ctx, pool, "", *user, req.UserAttributes, req.ClientMetadata)
}

// updateAttributes validates and plans changes, then persists the user once.
// When the plan asks for verification a code is stored with the same write
// and delivered afterwards.
func (e *Engine) updateAttributes(ctx context.Context, pool UserPoolService, clientID string, user User, changes []AttributeType, metadata map[string]string) (*UpdateUserAttributesResponse, error) {
	cfg := pool.Config()
	plan, err := PlanAttributeUpdate(user, cfg, changes)
	if err != nil {
		return nil, err
	}

	updated := plan.Apply(user)
	updated.UserLastModifiedDate = e.clock.Now()

	resp := &UpdateUserAttributesResponse{CodeDeliveryDetailsList: []CodeDeliveryDetails{}}
	if !plan.NeedsVerification {
		if err := pool.SaveUser(ctx, updated); err != nil {
			return nil, err
		}
		return resp, nil
	}

	details, ok := selectDeliveryTarget(cfg, updated.Attributes)
	if !ok {
		return nil, ErrNoVerifiedDeliveryTarget
	}
	code, err := e.newOTP()
	if err != nil {
		return nil, err
	}
	updated.AttributeVerificationCode = code
	if err := pool.SaveUser(ctx, updated); err != nil {
		return nil, err
	}

	if err := e.deliver(ctx, DeliveryRequest{
		Source:         DeliverySourceUpdateUserAttribute,
		ClientID:       clientID,
		UserPoolID:     cfg.ID,
		User:           updated,
		Code:           code,
		ClientMetadata: metadata,
		Details:        details,
	}); err != nil {
		return nil, err
	}

	resp.CodeDeliveryDetailsList = append(resp.CodeDeliveryDetailsList, details)
	return resp, nil
}

// VerifyUserAttribute confirms an attribute with the code delivered for it.
// A code is consumed by its first successful use.
func (e *Engine) VerifyUserAttribute(ctx context.Context, req VerifyUserAttributeRequest) (err error) {
	defer func() { e.metrics.observe(opVerifyUserAttribute, err) }()

	if err := e.validateRequest(req); err != nil {
		return err
	}
	pool, user, _, err := e.authenticatedUser(ctx, req.AccessToken)
	if err != nil {
		return err
	}

	updated, err := ConfirmAttributeVerification(*user, req.AttributeName, req.Code)
	if err != nil {
		e.logger.Debug("attribute verification rejected",
			zap.String("username", user.Username),
			zap.String("attribute", req.AttributeName),
		)
		return err
	}
	updated.UserLastModifiedDate = e.clock.Now()
	return pool.SaveUser(ctx, updated)
}

// GetUserAttributeVerificationCode sends a fresh verification code to the
// named contact attribute. Any previous code stops working.
func (e *Engine) GetUserAttributeVerificationCode(ctx context.Context, req GetUserAttributeVerificationCodeRequest) (resp *GetUserAttributeVerificationCodeResponse, err error) {
	defer func() { e.metrics.observe(opGetUserAttributeVerificationCode, err) }()

	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	pool, user, clientID, err := e.authenticatedUser(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}

	var medium DeliveryMedium
	switch req.AttributeName {
	case AttributeEmail:
		medium = DeliveryMediumEmail
	case AttributePhoneNumber:
		medium = DeliveryMediumSMS
	default:
		return nil, newError(KindInvalidParameter, "%s: Attribute cannot be verified.", req.AttributeName)
	}
	dest, ok := AttributeValue(req.AttributeName, user.Attributes)
	if !ok || dest == "" {
		return nil, newError(KindInvalidParameter, "User has no attribute matching %s", req.AttributeName)
	}
	details := CodeDeliveryDetails{
		AttributeName:  req.AttributeName,
		DeliveryMedium: medium,
		Destination:    dest,
	}

	code, err := e.newOTP()
	if err != nil {
		return nil, err
	}
	updated := user.Clone()
	updated.AttributeVerificationCode = code
	updated.UserLastModifiedDate = e.clock.Now()
	if err := pool.SaveUser(ctx, updated); err != nil {
		return nil, err
	}

	if err := e.deliver(ctx, DeliveryRequest{
		Source:         DeliverySourceVerifyUserAttribute,
		ClientID:       clientID,
		UserPoolID:     pool.Config().ID,
		User:           updated,
		Code:           code,
		ClientMetadata: req.ClientMetadata,
		Details:        details,
	}); err != nil {
		return nil, err
	}
	return &GetUserAttributeVerificationCodeResponse{CodeDeliveryDetails: details}, nil
}
