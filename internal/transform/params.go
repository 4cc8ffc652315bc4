package transform

import (
	"strings"

	"github.com/mark3labs/swagger2ts/internal/naming"
	"github.com/mark3labs/swagger2ts/internal/spec"
)

// primitiveArrayParam is the name given to a synthesized body parameter whose
// type is an array of primitives.
const primitiveArrayParam = "values"

// ReturnType derives the return descriptor of op from its success response.
// "200" is preferred, then the first declared 2xx other than "204". A void
// descriptor is returned when there is no such response or it has no JSON
// body.
func ReturnType(op *spec.Operation) (TypeDescriptor, error) {
	resp := successResponse(op.Responses)
	if resp == nil {
		return TypeDescriptor{}, nil
	}
	schema := resp.JSONSchema()
	if schema == nil {
		return TypeDescriptor{}, nil
	}
	return ResolveType(schema)
}

func successResponse(responses spec.Responses) *spec.Response {
	if r := responses.Get("200"); r != nil {
		return r
	}
	for _, r := range responses {
		if r.Status == "204" {
			continue
		}
		if len(r.Status) == 3 && r.Status[0] == '2' {
			return r
		}
		if strings.EqualFold(r.Status, "2XX") {
			return r
		}
	}
	return nil
}

type paramStrategy func(doc *spec.Document, declared []*spec.Parameter, op *spec.Operation) ([]Parameter, error)

// paramStrategies maps a method category to the way its parameters are
// derived. Methods that are not listed yield no parameters.
var paramStrategies = map[spec.HttpMethod]paramStrategy{
	spec.GET:    declaredParams,
	spec.POST:   mutationParams,
	spec.PUT:    mutationParams,
	spec.PATCH:  mutationParams,
	spec.DELETE: mutationParams,
}

// Parameters derives the action parameters of op, which is declared on item.
// Path-level parameters come first unless op redeclares them.
func Parameters(doc *spec.Document, item *spec.PathItem, op *spec.Operation) ([]Parameter, error) {
	strategy, ok := paramStrategies[op.Method]
	if !ok {
		return []Parameter{}, nil
	}
	declared, err := mergeParameters(doc, item, op)
	if err != nil {
		return nil, err
	}
	return strategy(doc, declared, op)
}

func declaredParams(_ *spec.Document, declared []*spec.Parameter, _ *spec.Operation) ([]Parameter, error) {
	out := make([]Parameter, 0, len(declared))
	for _, p := range declared {
		t, err := ResolveType(p.TypeSchema())
		if err != nil {
			return nil, atParameter(err, p.Name)
		}
		out = append(out, Parameter{
			Name:       p.Name,
			In:         p.In,
			Required:   p.Required,
			Type:       t.Type,
			ImportType: t.ImportType,
		})
	}
	return out, nil
}

func mutationParams(doc *spec.Document, declared []*spec.Parameter, op *spec.Operation) ([]Parameter, error) {
	if len(declared) > 0 {
		return declaredParams(doc, declared, op)
	}
	body := op.RequestBody
	if body == nil {
		return []Parameter{}, nil
	}
	mt := body.Content.JSON()
	if mt == nil || mt.Schema == nil {
		return nil, &TransformError{
			Code:    UnsupportedOperation,
			Message: "request body has no application/json content",
		}
	}
	t, err := ResolveType(mt.Schema)
	if err != nil {
		return nil, atParameter(err, "requestBody")
	}
	required := body.Required == nil || *body.Required
	return []Parameter{{
		Name:       bodyParamName(body, t),
		In:         "body",
		Required:   required,
		Type:       t.Type,
		ImportType: t.ImportType,
	}}, nil
}

func bodyParamName(body *spec.RequestBody, t TypeDescriptor) string {
	if name := body.ParameterName(); name != "" {
		return name
	}
	if isPrimitiveArray(t) {
		return primitiveArrayParam
	}
	return naming.CamelTail(t.Type)
}

// mergeParameters resolves parameter references and puts path-level
// parameters in front of the operation's own.
func mergeParameters(doc *spec.Document, item *spec.PathItem, op *spec.Operation) ([]*spec.Parameter, error) {
	own, err := resolveParameters(doc, op.Parameters)
	if err != nil {
		return nil, err
	}
	shared, err := resolveParameters(doc, item.Parameters)
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return own, nil
	}

	redeclared := make(map[string]bool, len(own))
	for _, p := range own {
		redeclared[paramKey(p.In, p.Name)] = true
	}
	merged := make([]*spec.Parameter, 0, len(shared)+len(own))
	for _, p := range shared {
		if !redeclared[paramKey(p.In, p.Name)] {
			merged = append(merged, p)
		}
	}
	return append(merged, own...), nil
}

func resolveParameters(doc *spec.Document, params []*spec.Parameter) ([]*spec.Parameter, error) {
	out := make([]*spec.Parameter, 0, len(params))
	for _, p := range params {
		if p == nil {
			continue
		}
		if p.Ref == "" {
			out = append(out, p)
			continue
		}
		target, ok := doc.LookupParameter(p.Ref)
		if !ok {
			return nil, &TransformError{
				Code:    DanglingReference,
				Message: "parameter reference " + p.Ref + " does not resolve",
			}
		}
		out = append(out, target)
	}
	return out, nil
}

func paramKey(in, name string) string { return in + ":" + name }

func atParameter(err error, name string) error {
	if te, ok := err.(*TransformError); ok && name != "" {
		te.Message = "parameter " + name + ": " + te.Message
	}
	return err
}
