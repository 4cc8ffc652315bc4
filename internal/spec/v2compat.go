package spec

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// preprocessV2ForCompatibility rewrites Swagger 2 operations that kin-openapi
// cannot convert:
//   - several body parameters are merged into one object-typed body whose
//     properties are the original parameters;
//   - body parameters mixed with formData parameters become formData entries
//     and the operation consumes multipart/form-data.
//
// On error the original bytes are returned with modified=false.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok || len(paths) == 0 {
		return data, false, nil
	}

	modified := false
	for _, item := range paths {
		ops, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for key, raw := range ops {
			if _, ok := ParseHttpMethod(key); !ok {
				continue
			}
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if rewriteBodyParams(op) {
				modified = true
			}
		}
	}

	if !modified {
		return data, false, nil
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

// rewriteBodyParams applies the body-parameter fixes to one operation and
// reports whether it changed anything.
func rewriteBodyParams(op map[string]any) bool {
	params, ok := op["parameters"].([]any)
	if !ok || len(params) == 0 {
		return false
	}

	var bodies, others []map[string]any
	hasFormData := false
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil {
			continue
		}
		switch in := asString(pm["in"]); {
		case strings.EqualFold(in, "body"):
			bodies = append(bodies, pm)
		case strings.EqualFold(in, "formData"):
			hasFormData = true
			others = append(others, pm)
		default:
			others = append(others, pm)
		}
	}

	switch {
	case len(bodies) == 0:
		return false
	case hasFormData:
		out := make([]any, 0, len(params))
		for _, b := range bodies {
			out = append(out, formDataFromBodyParam(b))
		}
		for _, o := range others {
			out = append(out, o)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		if !containsString(consumes, "multipart/form-data") {
			op["consumes"] = append(consumes, "multipart/form-data")
		}
		return true
	case len(bodies) > 1:
		props := map[string]any{}
		var required []any
		for _, b := range bodies {
			name := asString(b["name"])
			if name == "" {
				name = "field"
			}
			schema, _ := b["schema"].(map[string]any)
			if schema == nil {
				schema = map[string]any{"type": "string"}
			}
			props[name] = schema
			if req, _ := b["required"].(bool); req {
				required = append(required, name)
			}
		}
		bodySchema := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			bodySchema["required"] = required
		}
		out := []any{map[string]any{"in": "body", "name": "body", "schema": bodySchema}}
		for _, o := range others {
			out = append(out, o)
		}
		op["parameters"] = out
		return true
	default:
		return false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

func formDataFromBodyParam(pm map[string]any) map[string]any {
	name := asString(pm["name"])
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": "formData", "name": name, "type": "string"}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	schema, _ := pm["schema"].(map[string]any)
	if schema == nil {
		return out
	}
	// Referenced objects cannot be expressed as formData and stay strings.
	if t := asString(schema["type"]); t != "" {
		out["type"] = t
	}
	if items, ok := schema["items"].(map[string]any); ok {
		out["items"] = items
	}
	if f := asString(schema["format"]); f != "" {
		out["format"] = f
	}
	return out
}
