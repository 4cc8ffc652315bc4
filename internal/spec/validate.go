package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Validate checks a raw document against the OpenAPI structural rules.
// Swagger 2 documents are converted to OpenAPI 3 first; conversion failures,
// including refs the converter cannot resolve, are reported as
// ConversionError. For OpenAPI 3 input unresolved refs do not fail
// validation so that dangling references surface later with component
// context.
func Validate(ctx context.Context, raw []byte, version int) error {
	var doc *openapi3.T
	switch version {
	case 3:
		loader := openapi3.NewLoader()
		loader.IsExternalRefsAllowed = false
		loaded, err := loader.LoadFromData(raw)
		if err != nil {
			return err
		}
		doc = loaded
	case 2:
		if fixed, changed, _ := preprocessV2ForCompatibility(raw); changed {
			raw = fixed
		}
		converted, err := convertV2ToV3(raw)
		if err != nil {
			return &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Cause: err}
		}
		doc = converted
	default:
		return &SpecError{Code: ParseError, Message: "spec: unknown or unsupported OpenAPI/Swagger version"}
	}

	if err := doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
		return err
	}
	return nil
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	// openapi2.T only carries json tags, so go through a generic tree first.
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	js, err := json.Marshal(stringKeys(tree))
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(js, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

// stringKeys rewrites the map[any]any nodes yaml.v3 produces for mappings
// with non-string keys (unquoted response codes) so encoding/json accepts them.
func stringKeys(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			v[k] = stringKeys(child)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range v {
			v[i] = stringKeys(child)
		}
		return v
	default:
		return v
	}
}

// canProceedDespiteValidation returns true for validation errors that only
// concern unresolved $ref entries.
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
