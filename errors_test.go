package goCognito

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := newError(KindNotAuthorized, "User does not exist.")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatal("expected errors.Is to match on kind")
	}
	if errors.Is(err, ErrInvalidPassword) {
		t.Fatal("expected kinds to differ")
	}

	wrapped := fmt.Errorf("context: %w", err)
	if !errors.Is(wrapped, ErrNotAuthorized) {
		t.Fatal("expected match through wrapping")
	}
}

func TestErrorCodes(t *testing.T) {
	tests := map[ErrorKind]string{
		KindNotAuthorized:            "NotAuthorizedException",
		KindCodeMismatch:             "CodeMismatchException",
		KindAttributeNotInSchema:     "InvalidParameterException",
		KindNoVerifiedDeliveryTarget: "InvalidParameterException",
		KindSigningError:             "InternalErrorException",
		ErrorKind(200):               "InternalErrorException",
	}
	for kind, want := range tests {
		if got := kind.Code(); got != want {
			t.Fatalf("kind %d: expected %q, got %q", kind, want, got)
		}
	}
}

func TestErrorMessageFallsBackToKind(t *testing.T) {
	if ErrCodeMismatch.Error() != "Incorrect confirmation code" {
		t.Fatalf("unexpected message %q", ErrCodeMismatch.Error())
	}
	cause := errors.New("rsa failure")
	err := wrapError(KindSigningError, cause, "sign id token: %v", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
}
