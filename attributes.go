package goCognito

import (
	"sort"
	"strings"
)

// AttributeValue returns the value of the named attribute.
func AttributeValue(name string, attrs []AttributeType) (string, bool) {
	for _, attr := range attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether attrs contains name.
func HasAttribute(name string, attrs []AttributeType) bool {
	_, ok := AttributeValue(name, attrs)
	return ok
}

// AttributesAppend returns a new set where every entry of toAdd replaces the
// entry with the same name in attrs, or is appended when absent. attrs is
// not modified.
func AttributesAppend(attrs []AttributeType, toAdd ...AttributeType) []AttributeType {
	out := cloneAttributes(attrs)
	for _, attr := range toAdd {
		replaced := false
		for i := range out {
			if out[i].Name == attr.Name {
				out[i].Value = attr.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, attr)
		}
	}
	return out
}

// AttributesRemove returns a new set without the named attributes.
func AttributesRemove(attrs []AttributeType, names ...string) []AttributeType {
	out := make([]AttributeType, 0, len(attrs))
	for _, attr := range attrs {
		if containsString(names, attr.Name) {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// AttributesToRecord flattens attrs into a map.
func AttributesToRecord(attrs []AttributeType) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		out[attr.Name] = attr.Value
	}
	return out
}

// AttributesFromRecord converts a map into a set ordered by name.
func AttributesFromRecord(record map[string]string) []AttributeType {
	out := make([]AttributeType, 0, len(record))
	for name, value := range record {
		out = append(out, AttributeType{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CustomAttributes returns the "custom:" prefixed subset of attrs.
func CustomAttributes(attrs []AttributeType) []AttributeType {
	var out []AttributeType
	for _, attr := range attrs {
		if strings.HasPrefix(attr.Name, customAttributePrefix) {
			out = append(out, attr)
		}
	}
	return out
}

func cloneAttributes(attrs []AttributeType) []AttributeType {
	if attrs == nil {
		return nil
	}
	return append([]AttributeType(nil), attrs...)
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
