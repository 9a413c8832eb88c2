package goCognito

import "context"

// TriggerName identifies a caller-supplied hook.
type TriggerName string

const (
	TriggerPreTokenGeneration TriggerName = "PreTokenGeneration"
	TriggerUserMigration      TriggerName = "UserMigration"
	TriggerPostAuthentication TriggerName = "PostAuthentication"
)

// Triggers reports which hooks are enabled. A Triggers value additionally
// implements the capability interface of every hook it supports
// ([PreTokenGenerationTrigger], [UserMigrationTrigger],
// [PostAuthenticationTrigger]); the engine only calls a hook when Enabled
// reports true and the capability is present.
type Triggers interface {
	Enabled(name TriggerName) bool
}

// GroupConfiguration is the group context handed to PreTokenGeneration.
type GroupConfiguration struct {
	GroupsToOverride   []string `json:"groupsToOverride"`
	IAMRolesToOverride []string `json:"iamRolesToOverride"`
	PreferredRole      string   `json:"preferredRole,omitempty"`
}

// PreTokenGenerationInput is passed to the claim override hook.
type PreTokenGenerationInput struct {
	TriggerSource      string            `json:"triggerSource"`
	ClientID           string            `json:"clientId"`
	ClientMetadata     map[string]string `json:"clientMetadata,omitempty"`
	UserAttributes     map[string]string `json:"userAttributes"`
	Username           string            `json:"username"`
	UserPoolID         string            `json:"userPoolId"`
	GroupConfiguration GroupConfiguration `json:"groupConfiguration"`
}

// ClaimsOverrideDetails is the result of the claim override hook. It only
// ever affects the Id token.
type ClaimsOverrideDetails struct {
	ClaimsToAddOrOverride map[string]any `json:"claimsToAddOrOverride,omitempty"`
	ClaimsToSuppress      []string       `json:"claimsToSuppress,omitempty"`
}

// PreTokenGenerationTrigger rewrites Id token claims at issuance.
type PreTokenGenerationTrigger interface {
	PreTokenGeneration(ctx context.Context, input PreTokenGenerationInput) (*ClaimsOverrideDetails, error)
}

// UserMigrationInput is passed to the user migration hook.
type UserMigrationInput struct {
	TriggerSource  string            `json:"triggerSource"`
	ClientID       string            `json:"clientId"`
	UserPoolID     string            `json:"userPoolId"`
	Username       string            `json:"username"`
	Password       string            `json:"password"`
	ClientMetadata map[string]string `json:"clientMetadata,omitempty"`
	ValidationData map[string]string `json:"validationData,omitempty"`
}

// UserMigrationResult describes the user the hook vouches for.
type UserMigrationResult struct {
	UserAttributes  map[string]string `json:"userAttributes"`
	FinalUserStatus UserStatus        `json:"finalUserStatus,omitempty"`
}

// UserMigrationTrigger imports a user from a legacy directory on first login.
type UserMigrationTrigger interface {
	UserMigration(ctx context.Context, input UserMigrationInput) (*UserMigrationResult, error)
}

// PostAuthenticationInput is passed to the post authentication hook.
type PostAuthenticationInput struct {
	TriggerSource  string            `json:"triggerSource"`
	ClientID       string            `json:"clientId"`
	ClientMetadata map[string]string `json:"clientMetadata,omitempty"`
	UserAttributes map[string]string `json:"userAttributes"`
	Username       string            `json:"username"`
	UserPoolID     string            `json:"userPoolId"`
}

// PostAuthenticationTrigger observes successful logins. Its error fails the
// login; its result is otherwise ignored.
type PostAuthenticationTrigger interface {
	PostAuthentication(ctx context.Context, input PostAuthenticationInput) error
}

func (e *Engine) triggerEnabled(name TriggerName) bool {
	return e.triggers != nil && e.triggers.Enabled(name)
}
