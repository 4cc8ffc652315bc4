package transform

import (
	"strings"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

const (
	arraySuffix = "[]"
	objectType  = "object"
)

// ResolveType maps a schema fragment to a TypeDescriptor. The cases are tried
// in a fixed order and the first match wins: $ref, array, map-like object,
// allOf, primitive. Anything else is an UnsupportedSchema error.
func ResolveType(s *spec.Schema) (TypeDescriptor, error) {
	if s == nil {
		return TypeDescriptor{}, unsupported("missing schema")
	}
	if t, ok := typeByRef(s); ok {
		return t, nil
	}
	if t, ok, err := typeFromArray(s); ok || err != nil {
		return t, err
	}
	if t, ok, err := typeFromMap(s); ok || err != nil {
		return t, err
	}
	if t, ok, err := typeFromAllOf(s); ok || err != nil {
		return t, err
	}
	if t, ok := primitiveType(s.Type); ok {
		return t, nil
	}
	return TypeDescriptor{}, describeUnsupported(s)
}

func typeByRef(s *spec.Schema) (TypeDescriptor, bool) {
	if s.Ref == "" {
		return TypeDescriptor{}, false
	}
	name := spec.RefName(s.Ref)
	return TypeDescriptor{Type: name, ImportType: name}, true
}

func typeFromArray(s *spec.Schema) (TypeDescriptor, bool, error) {
	if s.Type != "array" {
		return TypeDescriptor{}, false, nil
	}
	if s.Items == nil {
		return TypeDescriptor{}, true, unsupported("array schema has no items")
	}
	item, err := ResolveType(s.Items)
	if err != nil {
		return TypeDescriptor{}, true, err
	}
	return TypeDescriptor{Type: item.Type + arraySuffix, ImportType: item.ImportType}, true, nil
}

// typeFromMap handles objects whose values are described by
// additionalProperties. Only references and primitives are supported as map
// values.
func typeFromMap(s *spec.Schema) (TypeDescriptor, bool, error) {
	if s.Type != objectType || s.AdditionalProperties == nil {
		return TypeDescriptor{}, false, nil
	}
	value := s.AdditionalProperties
	if t, ok := typeByRef(value); ok {
		return TypeDescriptor{Type: t.Type + arraySuffix, ImportType: t.ImportType}, true, nil
	}
	if value.Type == objectType && value.AdditionalProperties != nil {
		return TypeDescriptor{}, true, unsupported("maps of maps are not supported")
	}
	if t, ok := primitiveType(value.Type); ok && len(value.AllOf) == 0 {
		return TypeDescriptor{Type: t.Type + arraySuffix}, true, nil
	}
	if value.Type == "array" {
		return TypeDescriptor{}, true, unsupported("maps of arrays are not supported")
	}
	return TypeDescriptor{}, true, unsupported("unsupported map value: %s", describeUnsupported(value).Message)
}

// typeFromAllOf takes the reference of the first allOf entry. Schemas are
// never merged.
func typeFromAllOf(s *spec.Schema) (TypeDescriptor, bool, error) {
	if len(s.AllOf) == 0 {
		return TypeDescriptor{}, false, nil
	}
	first := s.AllOf[0]
	if first == nil || first.Ref == "" {
		return TypeDescriptor{}, true, unsupported("allOf is only supported with a leading $ref")
	}
	t, _ := typeByRef(first)
	return t, true, nil
}

func primitiveType(typ string) (TypeDescriptor, bool) {
	switch typ {
	case "boolean":
		return TypeDescriptor{Type: "boolean"}, true
	case "integer", "number":
		return TypeDescriptor{Type: "number"}, true
	case "string":
		return TypeDescriptor{Type: "string"}, true
	case objectType:
		return TypeDescriptor{Type: objectType}, true
	default:
		return TypeDescriptor{}, false
	}
}

// isPrimitiveArray reports whether t is an array of primitives, e.g. "string[]".
func isPrimitiveArray(t TypeDescriptor) bool {
	if t.ImportType != "" || !strings.HasSuffix(t.Type, arraySuffix) {
		return false
	}
	_, ok := primitiveType(strings.TrimRight(t.Type, arraySuffix))
	return ok
}

func describeUnsupported(s *spec.Schema) *TransformError {
	switch {
	case len(s.OneOf) > 0:
		return unsupported("oneOf is not supported")
	case len(s.AnyOf) > 0:
		return unsupported("anyOf is not supported")
	case s.Type == "":
		return unsupported("schema has no type")
	default:
		return unsupported("unsupported type %q", s.Type)
	}
}
