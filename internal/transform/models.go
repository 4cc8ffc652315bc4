package transform

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mark3labs/swagger2ts/internal/naming"
	"github.com/mark3labs/swagger2ts/internal/spec"
)

const enumModelSuffix = "Type"

// modelBuilder materializes the model files reachable from a folder's
// client imports.
type modelBuilder struct {
	schemas *spec.Schemas
	logger  *log.Logger
}

// build walks every import of every client file of f, in order.
func (b *modelBuilder) build(f *Folder) error {
	for _, c := range f.ClientFiles {
		for _, name := range c.Imports {
			if err := b.put(f, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// put registers the model called name in f, then walks its properties.
// Registration happens first so self and mutual references terminate.
func (b *modelBuilder) put(f *Folder, name string) error {
	if _, exists := f.Model(name); exists {
		return nil
	}
	schema, ok := b.schemas.Lookup(name)
	if !ok {
		return &TransformError{
			Code:      DanglingReference,
			Message:   fmt.Sprintf("schema %q is not defined", name),
			Component: name,
		}
	}
	m, _ := f.claimModel(name)
	b.logger.Debug("model", "folder", f.Name, "name", name)

	if len(schema.Enum) > 0 {
		m.IsEnum = true
		m.Fields = enumFields(schema)
		return nil
	}

	for _, prop := range schema.Properties {
		field, imp, err := b.property(f, name, prop)
		if err != nil {
			return atComponent(err, name, prop.Name)
		}
		m.Fields = append(m.Fields, field)
		if imp == "" {
			continue
		}
		m.Imports = appendUnique(m.Imports, imp)
		if err := b.put(f, imp); err != nil {
			return err
		}
	}
	return nil
}

// property resolves one model property. It returns the field and the name of
// the component it references, if any.
func (b *modelBuilder) property(f *Folder, owner string, prop spec.Property) (Field, string, error) {
	s := prop.Schema
	if s == nil {
		return Field{}, "", unsupported("property has no schema")
	}
	field := Field{Name: prop.Name, Required: !s.IsNullable()}

	if isInlineEnum(s) {
		enum := b.inlineEnum(f, owner, prop.Name, s)
		field.Type = enum
		return field, enum, nil
	}

	t, err := ResolveType(s)
	if err != nil {
		return Field{}, "", err
	}
	field.Type = t.Type
	return field, t.ImportType, nil
}

// isInlineEnum reports an enum declared directly on a property. References,
// arrays and maps take precedence over the enum keyword.
func isInlineEnum(s *spec.Schema) bool {
	if len(s.Enum) == 0 || s.Ref != "" || s.Type == "array" {
		return false
	}
	return !(s.Type == objectType && s.AdditionalProperties != nil)
}

// inlineEnum synthesizes an enum model for an inline property enum and
// returns its name. The model is named <Owner>Type; when that is taken, by a
// folder model or a declared component, <Owner><Property>Type is used.
func (b *modelBuilder) inlineEnum(f *Folder, owner, property string, s *spec.Schema) string {
	candidates := []string{
		owner + enumModelSuffix,
		owner + naming.Identifier(property) + enumModelSuffix,
	}
	name := ""
	for _, c := range candidates {
		if !b.taken(f, c) {
			name = c
			break
		}
	}
	if name == "" {
		base := candidates[len(candidates)-1]
		for i := 2; ; i++ {
			if c := fmt.Sprintf("%s%d", base, i); !b.taken(f, c) {
				name = c
				break
			}
		}
	}

	m, _ := f.claimModel(name)
	m.IsEnum = true
	m.Fields = enumFields(s)
	b.logger.Debug("inline enum", "folder", f.Name, "name", name, "owner", owner, "property", property)
	return name
}

func (b *modelBuilder) taken(f *Folder, name string) bool {
	if _, exists := f.Model(name); exists {
		return true
	}
	_, declared := b.schemas.Lookup(name)
	return declared
}

// enumFields pairs each enum value with its declared symbolic name, falling
// back to "_<value>". A null member of a nullable enum is skipped.
func enumFields(s *spec.Schema) []Field {
	fields := make([]Field, 0, len(s.Enum))
	for i, v := range s.Enum {
		if v == nil {
			continue
		}
		name := s.EnumName(i)
		if name == "" {
			name = naming.EnumMember(fmt.Sprint(v))
		}
		fields = append(fields, Field{Name: name, Required: true, Value: v})
	}
	return fields
}
