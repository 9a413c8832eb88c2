package goCognito

import "fmt"

// ErrorKind classifies every failure the engine can report. The boundary
// layer maps kinds to wire codes with [ErrorKind.Code].
type ErrorKind uint8

const (
	// KindNotAuthorized covers unknown users, unknown clients, bad tokens and failed migrations.
	KindNotAuthorized ErrorKind = iota + 1
	// KindInvalidPassword is returned when the supplied password does not match.
	KindInvalidPassword
	// KindPasswordResetRequired is returned for users in RESET_REQUIRED.
	KindPasswordResetRequired
	// KindMFAMethodNotFound is returned when MFA is required but no SMS option can be used.
	KindMFAMethodNotFound
	// KindCodeMismatch is returned when an MFA or verification code does not match.
	KindCodeMismatch
	// KindAttributeNotInSchema is returned for attributes the pool does not declare.
	KindAttributeNotInSchema
	// KindAttributeImmutable is returned for attempts to change immutable attributes.
	KindAttributeImmutable
	// KindMissingBaseAttribute is returned when a *_verified flag has no base attribute.
	KindMissingBaseAttribute
	// KindNoVerifiedDeliveryTarget is returned when a verification code has nowhere to go.
	KindNoVerifiedDeliveryTarget
	// KindInvalidParameter is returned for malformed requests.
	KindInvalidParameter
	// KindResourceNotFound is returned for unknown pools.
	KindResourceNotFound
	// KindUnsupported is returned for flows and challenges the emulator does not implement.
	KindUnsupported
	// KindSigningError is returned when token signing fails. It is fatal and never retried.
	KindSigningError
)

var kindCodes = map[ErrorKind]string{
	KindNotAuthorized:            "NotAuthorizedException",
	KindInvalidPassword:          "InvalidPasswordException",
	KindPasswordResetRequired:    "PasswordResetRequiredException",
	KindMFAMethodNotFound:        "MFAMethodNotFoundException",
	KindCodeMismatch:             "CodeMismatchException",
	KindAttributeNotInSchema:     "InvalidParameterException",
	KindAttributeImmutable:       "InvalidParameterException",
	KindMissingBaseAttribute:     "InvalidParameterException",
	KindNoVerifiedDeliveryTarget: "InvalidParameterException",
	KindInvalidParameter:         "InvalidParameterException",
	KindResourceNotFound:         "ResourceNotFoundException",
	KindUnsupported:              "UnsupportedOperationException",
	KindSigningError:             "InternalErrorException",
}

var kindMessages = map[ErrorKind]string{
	KindNotAuthorized:            "User not authorized",
	KindInvalidPassword:          "Invalid password",
	KindPasswordResetRequired:    "Password reset required for the user",
	KindMFAMethodNotFound:        "No MFA mechanism registered in the account",
	KindCodeMismatch:             "Incorrect confirmation code",
	KindAttributeNotInSchema:     "Attribute does not exist in the schema.",
	KindAttributeImmutable:       "Attribute cannot be updated.",
	KindMissingBaseAttribute:     "Base attribute is required",
	KindNoVerifiedDeliveryTarget: "User has no attribute matching desired auto verified attributes",
	KindInvalidParameter:         "Invalid parameter",
	KindResourceNotFound:         "Resource not found",
	KindUnsupported:              "Unsupported operation",
	KindSigningError:             "Token signing failed",
}

// Code returns the wire error code for k.
func (k ErrorKind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return "InternalErrorException"
}

// Error is the single failure type returned by engine operations.
// errors.Is matches two *Error values when their kinds are equal, so the
// package sentinels work regardless of message.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return kindMessages[e.Kind]
}

// Code returns the wire error code.
func (e *Error) Code() string {
	return e.Kind.Code()
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

var (
	ErrNotAuthorized            = &Error{Kind: KindNotAuthorized}
	ErrInvalidPassword          = &Error{Kind: KindInvalidPassword}
	ErrPasswordResetRequired    = &Error{Kind: KindPasswordResetRequired}
	ErrMFAMethodNotFound        = &Error{Kind: KindMFAMethodNotFound}
	ErrCodeMismatch             = &Error{Kind: KindCodeMismatch}
	ErrAttributeNotInSchema     = &Error{Kind: KindAttributeNotInSchema}
	ErrAttributeImmutable       = &Error{Kind: KindAttributeImmutable}
	ErrMissingBaseAttribute     = &Error{Kind: KindMissingBaseAttribute}
	ErrNoVerifiedDeliveryTarget = &Error{Kind: KindNoVerifiedDeliveryTarget}
	ErrInvalidParameter         = &Error{Kind: KindInvalidParameter}
	ErrResourceNotFound         = &Error{Kind: KindResourceNotFound}
	ErrUnsupported              = &Error{Kind: KindUnsupported}
	ErrSigningError             = &Error{Kind: KindSigningError}
)
