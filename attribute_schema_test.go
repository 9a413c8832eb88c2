package goCognito

import (
	"errors"
	"testing"
)

func TestValidateAttributeChanges(t *testing.T) {
	schema := append(DefaultSchemaAttributes(), SchemaAttribute{Name: "custom:tier", AttributeDataType: "String", Mutable: true})

	tests := []struct {
		name     string
		changes  []AttributeType
		existing []AttributeType
		wantKind *Error
		wantMsg  string
	}{
		{
			name:    "mutable standard and custom accepted",
			changes: []AttributeType{{Name: "given_name", Value: "A"}, {Name: "custom:tier", Value: "gold"}},
		},
		{
			name:     "unknown attribute",
			changes:  []AttributeType{{Name: "custom:nope", Value: "x"}},
			wantKind: ErrAttributeNotInSchema,
			wantMsg:  "custom:nope: Attribute does not exist in the schema.",
		},
		{
			name:     "immutable sub",
			changes:  []AttributeType{{Name: "sub", Value: "x"}},
			wantKind: ErrAttributeImmutable,
			wantMsg:  "sub: Attribute cannot be updated. (changing an immutable attribute)",
		},
		{
			name:     "email_verified without email",
			changes:  []AttributeType{{Name: "email_verified", Value: "true"}},
			wantKind: ErrMissingBaseAttribute,
			wantMsg:  "Email is required to verify/un-verify an email",
		},
		{
			name:     "email_verified with existing email",
			changes:  []AttributeType{{Name: "email_verified", Value: "true"}},
			existing: []AttributeType{{Name: "email", Value: "a@x.com"}},
		},
		{
			name:    "email_verified with email in request",
			changes: []AttributeType{{Name: "email_verified", Value: "true"}, {Name: "email", Value: "a@x.com"}},
		},
		{
			name:     "phone_number_verified without phone",
			changes:  []AttributeType{{Name: "phone_number_verified", Value: "true"}},
			wantKind: ErrMissingBaseAttribute,
			wantMsg:  "Phone Number is required to verify/un-verify a phone number",
		},
		{
			name:     "first violation in request order wins",
			changes:  []AttributeType{{Name: "sub", Value: "x"}, {Name: "custom:nope", Value: "y"}},
			wantKind: ErrAttributeImmutable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ValidateAttributeChanges(tt.changes, schema, tt.existing)
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(out) != len(tt.changes) {
					t.Fatalf("expected changes returned unchanged, got %+v", out)
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind.Code(), err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestSchemaForFallsBackToDefaults(t *testing.T) {
	if got := schemaFor(UserPool{}); len(got) != len(DefaultSchemaAttributes()) {
		t.Fatalf("expected default schema, got %d entries", len(got))
	}
	custom := []SchemaAttribute{{Name: "email", Mutable: true}}
	if got := schemaFor(UserPool{SchemaAttributes: custom}); len(got) != 1 {
		t.Fatalf("expected declared schema, got %d entries", len(got))
	}
}
