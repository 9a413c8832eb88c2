package goCognito

import "strings"

var contactAttributes = []string{AttributeEmail, AttributePhoneNumber}

// AttributeUpdatePlan is the outcome of [PlanAttributeUpdate].
//
// ApplyNow merges into the committed attribute set immediately. Defer holds
// contact attribute changes withheld until verification; when non-empty it
// replaces the user's pending set wholesale. NeedsVerification tells the
// caller to issue and deliver an attribute verification code.
type AttributeUpdatePlan struct {
	ApplyNow          []AttributeType
	Defer             []AttributeType
	NeedsVerification bool
}

// PlanAttributeUpdate validates changes against the pool schema and decides
// which of them commit now and which wait for verification.
func PlanAttributeUpdate(user User, pool UserPool, changes []AttributeType) (*AttributeUpdatePlan, error) {
	accepted, err := ValidateAttributeChanges(changes, schemaFor(pool), user.Attributes)
	if err != nil {
		return nil, err
	}

	effective := cloneAttributes(accepted)
	for _, name := range contactAttributes {
		if !contactValueChanges(name, accepted, user.Attributes) {
			continue
		}
		if !HasAttribute(name+verifiedSuffix, accepted) {
			effective = append(effective, AttributeType{Name: name + verifiedSuffix, Value: "false"})
		}
	}

	requireVerification := pool.UserAttributeUpdateSettings.AttributesRequireVerificationBeforeUpdate
	plan := &AttributeUpdatePlan{}
	for _, attr := range effective {
		base := contactBaseName(attr.Name)
		if base != "" &&
			containsString(requireVerification, base) &&
			contactValueChanges(base, accepted, user.Attributes) {
			plan.Defer = append(plan.Defer, attr)
			continue
		}
		plan.ApplyNow = append(plan.ApplyNow, attr)
	}

	if len(pool.AutoVerifiedAttributes) > 0 {
		for _, name := range pool.AutoVerifiedAttributes {
			if v, ok := AttributeValue(name+verifiedSuffix, effective); ok && v == "false" {
				plan.NeedsVerification = true
				break
			}
		}
	}

	return plan, nil
}

// Apply returns a copy of user with the plan's immediate changes merged and,
// when anything was deferred, the pending set replaced.
func (p *AttributeUpdatePlan) Apply(user User) User {
	out := user.Clone()
	out.Attributes = AttributesAppend(out.Attributes, p.ApplyNow...)
	if len(p.Defer) > 0 {
		out.UnverifiedAttributeChanges = cloneAttributes(p.Defer)
	}
	return out
}

// ConfirmAttributeVerification consumes the user's attribute verification
// code. A pending change for attributeName is committed with its verified
// flag forced to "true"; otherwise the committed attribute is marked
// verified. Names other than email and phone_number only consume the code.
func ConfirmAttributeVerification(user User, attributeName, code string) (User, error) {
	if user.AttributeVerificationCode == "" || code != user.AttributeVerificationCode {
		return User{}, newError(KindCodeMismatch, "Incorrect confirmation code")
	}

	out := user.Clone()
	if containsString(contactAttributes, attributeName) {
		flag := AttributeType{Name: attributeName + verifiedSuffix, Value: "true"}
		if pending, ok := AttributeValue(attributeName, out.UnverifiedAttributeChanges); ok {
			out.Attributes = AttributesAppend(out.Attributes, AttributeType{Name: attributeName, Value: pending}, flag)
			out.UnverifiedAttributeChanges = nil
		} else {
			out.Attributes = AttributesAppend(out.Attributes, flag)
		}
	}
	out.AttributeVerificationCode = ""
	return out, nil
}

// selectDeliveryTarget picks where an attribute verification code goes:
// phone_number over email, among the pool's auto-verified attributes that
// the user actually has.
func selectDeliveryTarget(pool UserPool, attrs []AttributeType) (CodeDeliveryDetails, bool) {
	if containsString(pool.AutoVerifiedAttributes, AttributePhoneNumber) {
		if phone, ok := AttributeValue(AttributePhoneNumber, attrs); ok && phone != "" {
			return CodeDeliveryDetails{
				AttributeName:  AttributePhoneNumber,
				DeliveryMedium: DeliveryMediumSMS,
				Destination:    phone,
			}, true
		}
	}
	if containsString(pool.AutoVerifiedAttributes, AttributeEmail) {
		if email, ok := AttributeValue(AttributeEmail, attrs); ok && email != "" {
			return CodeDeliveryDetails{
				AttributeName:  AttributeEmail,
				DeliveryMedium: DeliveryMediumEmail,
				Destination:    email,
			}, true
		}
	}
	return CodeDeliveryDetails{}, false
}

func contactValueChanges(name string, changes, committed []AttributeType) bool {
	next, ok := AttributeValue(name, changes)
	if !ok {
		return false
	}
	current, had := AttributeValue(name, committed)
	return !had || current != next
}

func contactBaseName(name string) string {
	base := strings.TrimSuffix(name, verifiedSuffix)
	if containsString(contactAttributes, base) {
		return base
	}
	return ""
}
