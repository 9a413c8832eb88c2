package goCognito

// ValidateAttributeChanges checks proposed changes against a pool schema.
// existing are the user's committed attributes; they satisfy the base
// attribute requirement of *_verified flags alongside the change set.
// The first violation in request order is returned. The function has no
// side effects and returns the accepted changes unchanged.
func ValidateAttributeChanges(changes []AttributeType, schema []SchemaAttribute, existing []AttributeType) ([]AttributeType, error) {
	for _, change := range changes {
		def, ok := findSchemaAttribute(change.Name, schema)
		if !ok {
			return nil, newError(KindAttributeNotInSchema, "%s: Attribute does not exist in the schema.", change.Name)
		}
		if !def.Mutable {
			return nil, newError(KindAttributeImmutable, "%s: Attribute cannot be updated. (changing an immutable attribute)", change.Name)
		}

		switch change.Name {
		case AttributeEmailVerified:
			if !hasBaseValue(AttributeEmail, changes, existing) {
				return nil, newError(KindMissingBaseAttribute, "Email is required to verify/un-verify an email")
			}
		case AttributePhoneNumberVerified:
			if !hasBaseValue(AttributePhoneNumber, changes, existing) {
				return nil, newError(KindMissingBaseAttribute, "Phone Number is required to verify/un-verify a phone number")
			}
		}
	}
	return changes, nil
}

func hasBaseValue(name string, changes, existing []AttributeType) bool {
	if v, ok := AttributeValue(name, changes); ok && v != "" {
		return true
	}
	v, ok := AttributeValue(name, existing)
	return ok && v != ""
}
