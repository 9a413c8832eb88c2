package goCognito

import "testing"

func TestAttributesAppendReplacesByName(t *testing.T) {
	base := []AttributeType{{Name: "sub", Value: "1"}, {Name: "email", Value: "old@x.com"}}
	out := AttributesAppend(base,
		AttributeType{Name: "email", Value: "new@x.com"},
		AttributeType{Name: "custom:tier", Value: "gold"},
	)

	if len(out) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(out))
	}
	if v, _ := AttributeValue("email", out); v != "new@x.com" {
		t.Fatalf("expected replaced email, got %q", v)
	}
	if out[1].Name != "email" {
		t.Fatalf("expected replacement in place, got %+v", out)
	}
	if v, _ := AttributeValue("email", base); v != "old@x.com" {
		t.Fatal("expected input left untouched")
	}
}

func TestAttributesRemove(t *testing.T) {
	base := []AttributeType{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}, {Name: "c", Value: "3"}}
	out := AttributesRemove(base, "b", "missing")
	if len(out) != 2 || HasAttribute("b", out) {
		t.Fatalf("unexpected result %+v", out)
	}
	if len(base) != 3 {
		t.Fatal("expected input left untouched")
	}
}

func TestAttributesRecordRoundTripIsSorted(t *testing.T) {
	record := map[string]string{"email": "a@x.com", "custom:tier": "gold", "sub": "1"}
	attrs := AttributesFromRecord(record)
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Name != "custom:tier" || attrs[1].Name != "email" || attrs[2].Name != "sub" {
		t.Fatalf("expected name order, got %+v", attrs)
	}
	back := AttributesToRecord(attrs)
	for k, v := range record {
		if back[k] != v {
			t.Fatalf("expected %s=%s, got %q", k, v, back[k])
		}
	}
}

func TestCustomAttributes(t *testing.T) {
	attrs := []AttributeType{{Name: "email", Value: "a"}, {Name: "custom:tier", Value: "gold"}, {Name: "custom:org", Value: "x"}}
	custom := CustomAttributes(attrs)
	if len(custom) != 2 || custom[0].Name != "custom:tier" || custom[1].Name != "custom:org" {
		t.Fatalf("unexpected custom attributes %+v", custom)
	}
}

func TestUserCloneDoesNotAlias(t *testing.T) {
	u := testUser("alice", "pw", AttributeType{Name: "email", Value: "a@x.com"})
	u.RefreshTokens = []string{"t1"}
	u.UnverifiedAttributeChanges = []AttributeType{{Name: "email", Value: "b@x.com"}}

	c := u.Clone()
	c.Attributes[0].Value = "changed"
	c.RefreshTokens[0] = "changed"
	c.UnverifiedAttributeChanges[0].Value = "changed"

	if u.Attributes[0].Value == "changed" || u.RefreshTokens[0] == "changed" || u.UnverifiedAttributeChanges[0].Value == "changed" {
		t.Fatal("expected clone to own its slices")
	}
	if u.Sub() != "sub-alice" {
		t.Fatalf("unexpected sub %q", u.Sub())
	}
}
