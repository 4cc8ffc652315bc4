package spec

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Description document model. Every mapping whose order matters to code
// generation (paths, methods, properties, schemas, responses, content) is
// decoded from yaml.Node so the document order survives.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

// ParseHttpMethod maps a path item key to a method. Keys that are not
// operations (parameters, summary, servers, x-*) report false.
func ParseHttpMethod(key string) (HttpMethod, bool) {
	switch m := HttpMethod(strings.ToLower(strings.TrimSpace(key))); m {
	case GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE:
		return m, true
	default:
		return "", false
	}
}

type Document struct {
	Swagger     string                `yaml:"swagger"`
	OpenAPI     string                `yaml:"openapi"`
	Info        Info                  `yaml:"info"`
	Paths       *Paths                `yaml:"paths"`
	Definitions *Schemas              `yaml:"definitions"`
	Parameters  map[string]*Parameter `yaml:"parameters"`
	Components  Components            `yaml:"components"`
}

type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type Components struct {
	Schemas    *Schemas              `yaml:"schemas"`
	Parameters map[string]*Parameter `yaml:"parameters"`
}

// Version returns 3 for OpenAPI 3.x, 2 for Swagger 2.x and 0 otherwise.
func (d *Document) Version() int {
	if strings.HasPrefix(strings.TrimSpace(d.OpenAPI), "3.") {
		return 3
	}
	if strings.HasPrefix(strings.TrimSpace(d.Swagger), "2.") {
		return 2
	}
	return 0
}

// ComponentSchemas returns components.schemas, falling back to the Swagger 2
// definitions map. It never returns nil.
func (d *Document) ComponentSchemas() *Schemas {
	if d.Components.Schemas != nil {
		return d.Components.Schemas
	}
	if d.Definitions != nil {
		return d.Definitions
	}
	return &Schemas{}
}

// LookupParameter resolves a parameter reference such as
// "#/components/parameters/limit" or "#/parameters/limit".
func (d *Document) LookupParameter(ref string) (*Parameter, bool) {
	name := RefName(ref)
	if p, ok := d.Components.Parameters[name]; ok && p != nil {
		return p, true
	}
	if p, ok := d.Parameters[name]; ok && p != nil {
		return p, true
	}
	return nil, false
}

// RefName returns the last segment of a JSON reference pointer.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

type Paths struct {
	Items []*PathItem
}

func (p *Paths) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: paths must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		item := &PathItem{Path: node.Content[i].Value}
		if err := node.Content[i+1].Decode(item); err != nil {
			return fmt.Errorf("paths %q: %w", item.Path, err)
		}
		p.Items = append(p.Items, item)
	}
	return nil
}

// PathItem holds the operations of one URL template in document order.
type PathItem struct {
	Path       string
	Parameters []*Parameter
	Operations []*Operation
}

func (p *PathItem) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: path item must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if key == "parameters" {
			if err := value.Decode(&p.Parameters); err != nil {
				return fmt.Errorf("parameters: %w", err)
			}
			continue
		}
		method, ok := ParseHttpMethod(key)
		if !ok {
			continue
		}
		op := &Operation{}
		if err := value.Decode(op); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		op.Method = method
		p.Operations = append(p.Operations, op)
	}
	return nil
}

type Operation struct {
	Method      HttpMethod   `yaml:"-"`
	OperationID string       `yaml:"operationId"`
	Summary     string       `yaml:"summary"`
	Tags        []string     `yaml:"tags"`
	Parameters  []*Parameter `yaml:"parameters"`
	RequestBody *RequestBody `yaml:"requestBody"`
	Responses   Responses    `yaml:"responses"`
}

type Parameter struct {
	Ref      string  `yaml:"$ref"`
	Name     string  `yaml:"name"`
	In       string  `yaml:"in"`
	Required bool    `yaml:"required"`
	Type     string  `yaml:"type"`
	Format   string  `yaml:"format"`
	Items    *Schema `yaml:"items"`
	Enum     []any   `yaml:"enum"`
	Schema   *Schema `yaml:"schema"`
}

// TypeSchema returns the parameter's schema, synthesizing one from the bare
// Swagger 2 type/items/enum fields when no schema is declared.
func (p *Parameter) TypeSchema() *Schema {
	if p.Schema != nil {
		return p.Schema
	}
	return &Schema{Type: p.Type, Format: p.Format, Items: p.Items, Enum: p.Enum}
}

type RequestBody struct {
	Required    *bool   `yaml:"required"`
	Description string  `yaml:"description"`
	Content     Content `yaml:"content"`
	// Explicit parameter names some generators honour.
	BodyName string `yaml:"x-codegen-request-body-name"`
	XName    string `yaml:"x-name"`
}

// ParameterName returns the explicit body parameter name, if any.
func (b *RequestBody) ParameterName() string {
	if n := strings.TrimSpace(b.BodyName); n != "" {
		return n
	}
	return strings.TrimSpace(b.XName)
}

type MediaType struct {
	Mime   string  `yaml:"-"`
	Schema *Schema `yaml:"schema"`
}

type Content []*MediaType

func (c *Content) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: content must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		mt := &MediaType{}
		if err := node.Content[i+1].Decode(mt); err != nil {
			return fmt.Errorf("content %q: %w", node.Content[i].Value, err)
		}
		mt.Mime = node.Content[i].Value
		*c = append(*c, mt)
	}
	return nil
}

// JSON returns the first application/json media type, ignoring media type
// parameters such as charset.
func (c Content) JSON() *MediaType {
	for _, mt := range c {
		base, _, _ := strings.Cut(mt.Mime, ";")
		if strings.EqualFold(strings.TrimSpace(base), "application/json") {
			return mt
		}
	}
	return nil
}

type Response struct {
	Status      string  `yaml:"-"`
	Description string  `yaml:"description"`
	Schema      *Schema `yaml:"schema"`
	Content     Content `yaml:"content"`
}

// JSONSchema returns the body schema of the response: the JSON media type
// schema for OpenAPI 3, the bare schema for Swagger 2.
func (r *Response) JSONSchema() *Schema {
	if len(r.Content) > 0 {
		if mt := r.Content.JSON(); mt != nil {
			return mt.Schema
		}
		return nil
	}
	return r.Schema
}

type Responses []*Response

func (r *Responses) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: responses must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		status := node.Content[i].Value
		if strings.HasPrefix(status, "x-") {
			continue
		}
		resp := &Response{}
		if err := node.Content[i+1].Decode(resp); err != nil {
			return fmt.Errorf("response %q: %w", status, err)
		}
		resp.Status = status
		*r = append(*r, resp)
	}
	return nil
}

// Get returns the response declared for status, or nil.
func (r Responses) Get(status string) *Response {
	for _, resp := range r {
		if resp.Status == status {
			return resp
		}
	}
	return nil
}

type Schema struct {
	Ref                  string     `yaml:"$ref"`
	Type                 string     `yaml:"-"`
	Format               string     `yaml:"format"`
	Description          string     `yaml:"description"`
	Items                *Schema    `yaml:"items"`
	Properties           Properties `yaml:"properties"`
	AdditionalProperties *Schema    `yaml:"-"`
	Required             []string   `yaml:"required"`
	Enum                 []any      `yaml:"enum"`
	EnumNames            []string   `yaml:"x-enumNames"`
	EnumVarNames         []string   `yaml:"x-enum-varnames"`
	AllOf                []*Schema  `yaml:"allOf"`
	OneOf                []*Schema  `yaml:"oneOf"`
	AnyOf                []*Schema  `yaml:"anyOf"`
	Nullable             bool       `yaml:"nullable"`
	XNullable            bool       `yaml:"x-nullable"`
}

func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	type plain Schema
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	var extra struct {
		Type                 yaml.Node `yaml:"type"`
		AdditionalProperties yaml.Node `yaml:"additionalProperties"`
	}
	if err := node.Decode(&extra); err != nil {
		return err
	}
	typ := resolveAlias(&extra.Type)
	switch typ.Kind {
	case yaml.ScalarNode:
		s.Type = typ.Value
	case yaml.SequenceNode:
		// OpenAPI 3.1 type lists: the first non-null entry wins.
		for _, n := range typ.Content {
			if n.Value == "null" {
				s.Nullable = true
				continue
			}
			if s.Type == "" {
				s.Type = n.Value
			}
		}
	}
	if ap := resolveAlias(&extra.AdditionalProperties); ap.Kind == yaml.MappingNode {
		s.AdditionalProperties = &Schema{}
		if err := ap.Decode(s.AdditionalProperties); err != nil {
			return fmt.Errorf("additionalProperties: %w", err)
		}
	}
	return nil
}

// IsNullable reports the OpenAPI 3 nullable flag or the Swagger 2 x-nullable
// extension.
func (s *Schema) IsNullable() bool { return s.Nullable || s.XNullable }

// EnumName returns the symbolic name declared for the i-th enum value.
func (s *Schema) EnumName(i int) string {
	if i < len(s.EnumNames) {
		return strings.TrimSpace(s.EnumNames[i])
	}
	if i < len(s.EnumVarNames) {
		return strings.TrimSpace(s.EnumVarNames[i])
	}
	return ""
}

type Property struct {
	Name   string
	Schema *Schema
}

type Properties []Property

func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		schema := &Schema{}
		if err := node.Content[i+1].Decode(schema); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		*p = append(*p, Property{Name: name, Schema: schema})
	}
	return nil
}

// Schemas is a name-indexed schema table that remembers declaration order.
type Schemas struct {
	names  []string
	byName map[string]*Schema
}

func (s *Schemas) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: schemas must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		schema := &Schema{}
		if err := node.Content[i+1].Decode(schema); err != nil {
			return fmt.Errorf("schema %q: %w", name, err)
		}
		s.Set(name, schema)
	}
	return nil
}

// Set adds or replaces a named schema.
func (s *Schemas) Set(name string, schema *Schema) {
	if s.byName == nil {
		s.byName = make(map[string]*Schema)
	}
	if _, exists := s.byName[name]; !exists {
		s.names = append(s.names, name)
	}
	s.byName[name] = schema
}

func (s *Schemas) Lookup(name string) (*Schema, bool) {
	if s == nil {
		return nil, false
	}
	schema, ok := s.byName[name]
	return schema, ok && schema != nil
}

// Names returns schema names in declaration order.
func (s *Schemas) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

func (s *Schemas) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Parse decodes a JSON or YAML description document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(yamlCompatible(data), &doc); err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse document: %v", err), Cause: err}
	}
	if doc.Paths == nil {
		return nil, &SpecError{Code: ParseError, Message: "spec: document has no paths", JSONPointer: "#/paths"}
	}
	return &doc, nil
}

// yamlCompatible rewrites the JSON escape "\/" inside string tokens of a JSON
// document to a plain "/". YAML double-quoted scalars do not know that escape,
// so JSON encoders that escape slashes would otherwise be rejected. YAML input
// is returned unchanged.
func yamlCompatible(data []byte) []byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 || trimmed[0] != '{' || !bytes.Contains(data, []byte(`\/`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case !inString:
			if c == '"' {
				inString = true
			}
		case c == '\\' && i+1 < len(data):
			i++
			if data[i] == '/' {
				out = append(out, '/')
				continue
			}
			out = append(out, c)
			c = data[i]
		case c == '"':
			inString = false
		}
		out = append(out, c)
	}
	return out
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}
