package triggers

import (
	"context"
	"errors"
	"testing"

	goCognito "github.com/MrEthical07/goCognito"
)

func TestRegistryEnabledFollowsInstalledFuncs(t *testing.T) {
	r := New()
	for _, name := range []goCognito.TriggerName{
		goCognito.TriggerPreTokenGeneration,
		goCognito.TriggerUserMigration,
		goCognito.TriggerPostAuthentication,
		"CustomMessage",
	} {
		if r.Enabled(name) {
			t.Fatalf("expected %s disabled on empty registry", name)
		}
	}

	r.SetPostAuthentication(func(context.Context, goCognito.PostAuthenticationInput) error { return nil })
	if !r.Enabled(goCognito.TriggerPostAuthentication) {
		t.Fatal("expected PostAuthentication enabled")
	}
	if r.Enabled(goCognito.TriggerUserMigration) {
		t.Fatal("expected UserMigration still disabled")
	}

	r.SetPostAuthentication(nil)
	if r.Enabled(goCognito.TriggerPostAuthentication) {
		t.Fatal("expected PostAuthentication disabled after reset")
	}
}

func TestRegistryDispatchesToInstalledFuncs(t *testing.T) {
	var got goCognito.PreTokenGenerationInput
	r := New().SetPreTokenGeneration(func(_ context.Context, in goCognito.PreTokenGenerationInput) (*goCognito.ClaimsOverrideDetails, error) {
		got = in
		return &goCognito.ClaimsOverrideDetails{ClaimsToSuppress: []string{"email"}}, nil
	})

	out, err := r.PreTokenGeneration(context.Background(), goCognito.PreTokenGenerationInput{Username: "alice"})
	if err != nil {
		t.Fatalf("PreTokenGeneration failed: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("expected input forwarded, got %+v", got)
	}
	if out == nil || len(out.ClaimsToSuppress) != 1 || out.ClaimsToSuppress[0] != "email" {
		t.Fatalf("unexpected overrides: %+v", out)
	}
}

func TestRegistryUnconfiguredHooks(t *testing.T) {
	r := New()
	if _, err := r.UserMigration(context.Background(), goCognito.UserMigrationInput{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if out, err := r.PreTokenGeneration(context.Background(), goCognito.PreTokenGenerationInput{}); err != nil || out != nil {
		t.Fatalf("expected no-op pre token generation, got %+v %v", out, err)
	}
	if err := r.PostAuthentication(context.Background(), goCognito.PostAuthenticationInput{}); err != nil {
		t.Fatalf("expected no-op post authentication, got %v", err)
	}
}
