package goCognito

// DefaultSchemaAttributes returns the standard attribute set a pool gets
// when it declares no schema of its own.
func DefaultSchemaAttributes() []SchemaAttribute {
	return []SchemaAttribute{
		{Name: "sub", AttributeDataType: "String", Mutable: false, Required: true},
		{Name: "name", AttributeDataType: "String", Mutable: true},
		{Name: "given_name", AttributeDataType: "String", Mutable: true},
		{Name: "family_name", AttributeDataType: "String", Mutable: true},
		{Name: "middle_name", AttributeDataType: "String", Mutable: true},
		{Name: "nickname", AttributeDataType: "String", Mutable: true},
		{Name: "preferred_username", AttributeDataType: "String", Mutable: true},
		{Name: "profile", AttributeDataType: "String", Mutable: true},
		{Name: "picture", AttributeDataType: "String", Mutable: true},
		{Name: "website", AttributeDataType: "String", Mutable: true},
		{Name: "email", AttributeDataType: "String", Mutable: true},
		{Name: "email_verified", AttributeDataType: "Boolean", Mutable: true},
		{Name: "gender", AttributeDataType: "String", Mutable: true},
		{Name: "birthdate", AttributeDataType: "String", Mutable: true},
		{Name: "zoneinfo", AttributeDataType: "String", Mutable: true},
		{Name: "locale", AttributeDataType: "String", Mutable: true},
		{Name: "phone_number", AttributeDataType: "String", Mutable: true},
		{Name: "phone_number_verified", AttributeDataType: "Boolean", Mutable: true},
		{Name: "address", AttributeDataType: "String", Mutable: true},
		{Name: "updated_at", AttributeDataType: "Number", Mutable: true},
	}
}

// schemaFor returns the pool's declared schema, or the defaults.
func schemaFor(pool UserPool) []SchemaAttribute {
	if len(pool.SchemaAttributes) == 0 {
		return DefaultSchemaAttributes()
	}
	return pool.SchemaAttributes
}

func findSchemaAttribute(name string, schema []SchemaAttribute) (SchemaAttribute, bool) {
	for _, def := range schema {
		if def.Name == name {
			return def, true
		}
	}
	return SchemaAttribute{}, false
}
