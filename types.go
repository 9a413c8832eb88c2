package goCognito

import "time"

// UserStatus is the lifecycle state of a user inside a pool.
type UserStatus string

const (
	UserStatusUnconfirmed         UserStatus = "UNCONFIRMED"
	UserStatusConfirmed           UserStatus = "CONFIRMED"
	UserStatusForceChangePassword UserStatus = "FORCE_CHANGE_PASSWORD"
	UserStatusResetRequired       UserStatus = "RESET_REQUIRED"
	UserStatusArchived            UserStatus = "ARCHIVED"
	UserStatusCompromised         UserStatus = "COMPROMISED"
	UserStatusUnknown             UserStatus = "UNKNOWN"
)

// MfaConfiguration is the pool-level MFA policy.
type MfaConfiguration string

const (
	MfaOff      MfaConfiguration = "OFF"
	MfaOn       MfaConfiguration = "ON"
	MfaOptional MfaConfiguration = "OPTIONAL"
)

// DeliveryMedium is the channel a code is sent through.
type DeliveryMedium string

const (
	DeliveryMediumSMS   DeliveryMedium = "SMS"
	DeliveryMediumEmail DeliveryMedium = "EMAIL"
)

// Contact attribute names.
const (
	AttributeSub                 = "sub"
	AttributeEmail               = "email"
	AttributeEmailVerified       = "email_verified"
	AttributePhoneNumber         = "phone_number"
	AttributePhoneNumberVerified = "phone_number_verified"

	customAttributePrefix = "custom:"
	verifiedSuffix        = "_verified"
)

// AttributeType is one name/value pair of a user's attribute set.
type AttributeType struct {
	Name  string `json:"Name" mapstructure:"name" validate:"required"`
	Value string `json:"Value" mapstructure:"value"`
}

// MFAOption is a legacy per-user MFA setting.
type MFAOption struct {
	DeliveryMedium DeliveryMedium `json:"DeliveryMedium" mapstructure:"delivery_medium"`
	AttributeName  string         `json:"AttributeName" mapstructure:"attribute_name"`
}

// User is the stored representation of a pool member. Engine code treats
// User as a value: transitions copy it, change fields and save once.
type User struct {
	Username                   string          `json:"Username"`
	Password                   string          `json:"Password"`
	Attributes                 []AttributeType `json:"Attributes"`
	UserStatus                 UserStatus      `json:"UserStatus"`
	Enabled                    bool            `json:"Enabled"`
	MFAOptions                 []MFAOption     `json:"MFAOptions,omitempty"`
	MFACode                    string          `json:"MFACode,omitempty"`
	RefreshTokens              []string        `json:"RefreshTokens,omitempty"`
	AttributeVerificationCode  string          `json:"AttributeVerificationCode,omitempty"`
	UnverifiedAttributeChanges []AttributeType `json:"UnverifiedAttributeChanges,omitempty"`
	UserCreateDate             time.Time       `json:"UserCreateDate"`
	UserLastModifiedDate       time.Time       `json:"UserLastModifiedDate"`
}

// Clone returns a deep copy so that callers can derive a new User without
// aliasing the slices of the original.
func (u User) Clone() User {
	out := u
	out.Attributes = cloneAttributes(u.Attributes)
	out.UnverifiedAttributeChanges = cloneAttributes(u.UnverifiedAttributeChanges)
	if u.MFAOptions != nil {
		out.MFAOptions = append([]MFAOption(nil), u.MFAOptions...)
	}
	if u.RefreshTokens != nil {
		out.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	}
	return out
}

// Sub returns the user's immutable subject identifier.
func (u User) Sub() string {
	sub, _ := AttributeValue(AttributeSub, u.Attributes)
	return sub
}

// SchemaAttribute declares one attribute a pool accepts.
type SchemaAttribute struct {
	Name              string `json:"Name" mapstructure:"name"`
	AttributeDataType string `json:"AttributeDataType" mapstructure:"attribute_data_type"`
	Mutable           bool   `json:"Mutable" mapstructure:"mutable"`
	Required          bool   `json:"Required" mapstructure:"required"`
}

// UserAttributeUpdateSettings controls deferral of contact attribute changes.
type UserAttributeUpdateSettings struct {
	AttributesRequireVerificationBeforeUpdate []string `json:"AttributesRequireVerificationBeforeUpdate,omitempty" mapstructure:"attributes_require_verification_before_update"`
}

// UserPool is the policy and schema of one pool.
type UserPool struct {
	ID                          string                      `json:"Id" mapstructure:"id"`
	Name                        string                      `json:"Name" mapstructure:"name"`
	SchemaAttributes            []SchemaAttribute           `json:"SchemaAttributes,omitempty" mapstructure:"schema_attributes"`
	MfaConfiguration            MfaConfiguration            `json:"MfaConfiguration,omitempty" mapstructure:"mfa_configuration"`
	AutoVerifiedAttributes      []string                    `json:"AutoVerifiedAttributes,omitempty" mapstructure:"auto_verified_attributes"`
	UserAttributeUpdateSettings UserAttributeUpdateSettings `json:"UserAttributeUpdateSettings" mapstructure:"user_attribute_update_settings"`
	UsernameAttributes          []string                    `json:"UsernameAttributes,omitempty" mapstructure:"username_attributes"`
}

// AppClient is a credential scope inside a pool.
type AppClient struct {
	ClientID   string `json:"ClientId" mapstructure:"client_id"`
	ClientName string `json:"ClientName" mapstructure:"client_name"`
	UserPoolID string `json:"UserPoolId" mapstructure:"user_pool_id"`
}

// AuthFlow names an authentication flow.
type AuthFlow string

const (
	AuthFlowUserPassword      AuthFlow = "USER_PASSWORD_AUTH"
	AuthFlowAdminUserPassword AuthFlow = "ADMIN_USER_PASSWORD_AUTH"
	AuthFlowAdminNoSRP        AuthFlow = "ADMIN_NO_SRP_AUTH"
	AuthFlowRefreshToken      AuthFlow = "REFRESH_TOKEN"
	AuthFlowRefreshTokenAuth  AuthFlow = "REFRESH_TOKEN_AUTH"
)

// ChallengeName names an intermediate authentication step.
type ChallengeName string

const (
	ChallengeNewPasswordRequired ChallengeName = "NEW_PASSWORD_REQUIRED"
	ChallengeSMSMFA              ChallengeName = "SMS_MFA"
)

// Auth and challenge parameter keys.
const (
	ParamUsername                   = "USERNAME"
	ParamPassword                   = "PASSWORD"
	ParamRefreshToken               = "REFRESH_TOKEN"
	ParamNewPassword                = "NEW_PASSWORD"
	ParamSMSMFACode                 = "SMS_MFA_CODE"
	ParamUserIDForSRP               = "USER_ID_FOR_SRP"
	ParamCodeDeliveryMedium         = "CODE_DELIVERY_DELIVERY_MEDIUM"
	ParamCodeDeliveryDestination    = "CODE_DELIVERY_DESTINATION"
	accessTokenScope                = "aws.cognito.signin.user.admin"
	postAuthenticationTriggerSource = "PostAuthentication_Authentication"
)

// InitiateAuthRequest is the input of [Engine.InitiateAuth].
type InitiateAuthRequest struct {
	AuthFlow       AuthFlow          `json:"AuthFlow" validate:"required"`
	ClientID       string            `json:"ClientId" validate:"required"`
	AuthParameters map[string]string `json:"AuthParameters"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
	// ValidationData is handed to the UserMigration hook.
	ValidationData map[string]string `json:"ValidationData,omitempty"`
}

// AdminInitiateAuthRequest is the input of [Engine.AdminInitiateAuth].
type AdminInitiateAuthRequest struct {
	AuthFlow       AuthFlow          `json:"AuthFlow" validate:"required"`
	ClientID       string            `json:"ClientId" validate:"required"`
	UserPoolID     string            `json:"UserPoolId" validate:"required"`
	AuthParameters map[string]string `json:"AuthParameters"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
	// ValidationData is handed to the UserMigration hook.
	ValidationData map[string]string `json:"ValidationData,omitempty"`
}

// RespondToAuthChallengeRequest is the input of [Engine.RespondToAuthChallenge].
type RespondToAuthChallengeRequest struct {
	ChallengeName      ChallengeName     `json:"ChallengeName" validate:"required"`
	ClientID           string            `json:"ClientId" validate:"required"`
	Session            string            `json:"Session,omitempty"`
	ChallengeResponses map[string]string `json:"ChallengeResponses" validate:"required"`
	ClientMetadata     map[string]string `json:"ClientMetadata,omitempty"`
}

// AuthenticationResult carries minted tokens. RefreshToken is empty on the
// refresh flow.
type AuthenticationResult struct {
	AccessToken  string `json:"AccessToken,omitempty"`
	IDToken      string `json:"IdToken,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
	ExpiresIn    int64  `json:"ExpiresIn,omitempty"`
	TokenType    string `json:"TokenType,omitempty"`
}

// AuthResponse is returned by every login and challenge operation. Exactly
// one of ChallengeName and AuthenticationResult is set.
type AuthResponse struct {
	ChallengeName        ChallengeName         `json:"ChallengeName,omitempty"`
	ChallengeParameters  map[string]string     `json:"ChallengeParameters"`
	Session              string                `json:"Session,omitempty"`
	AuthenticationResult *AuthenticationResult `json:"AuthenticationResult,omitempty"`
}

// CodeDeliveryDetails describes where a code was sent.
type CodeDeliveryDetails struct {
	AttributeName  string         `json:"AttributeName"`
	DeliveryMedium DeliveryMedium `json:"DeliveryMedium"`
	Destination    string         `json:"Destination"`
}

// UpdateUserAttributesRequest is the input of [Engine.UpdateUserAttributes].
type UpdateUserAttributesRequest struct {
	AccessToken    string            `json:"AccessToken" validate:"required"`
	UserAttributes []AttributeType   `json:"UserAttributes" validate:"required,dive"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

// AdminUpdateUserAttributesRequest is the input of [Engine.AdminUpdateUserAttributes].
type AdminUpdateUserAttributesRequest struct {
	UserPoolID     string            `json:"UserPoolId" validate:"required"`
	Username       string            `json:"Username" validate:"required"`
	UserAttributes []AttributeType   `json:"UserAttributes" validate:"required,dive"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

// UpdateUserAttributesResponse lists the codes sent for the update.
type UpdateUserAttributesResponse struct {
	CodeDeliveryDetailsList []CodeDeliveryDetails `json:"CodeDeliveryDetailsList"`
}

// VerifyUserAttributeRequest is the input of [Engine.VerifyUserAttribute].
type VerifyUserAttributeRequest struct {
	AccessToken   string `json:"AccessToken" validate:"required"`
	AttributeName string `json:"AttributeName" validate:"required"`
	Code          string `json:"Code" validate:"required"`
}

// GetUserAttributeVerificationCodeRequest is the input of
// [Engine.GetUserAttributeVerificationCode].
type GetUserAttributeVerificationCodeRequest struct {
	AccessToken    string            `json:"AccessToken" validate:"required"`
	AttributeName  string            `json:"AttributeName" validate:"required"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

// GetUserAttributeVerificationCodeResponse describes the delivered code.
type GetUserAttributeVerificationCodeResponse struct {
	CodeDeliveryDetails CodeDeliveryDetails `json:"CodeDeliveryDetails"`
}
