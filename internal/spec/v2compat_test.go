package spec

import (
	"strings"
	"testing"
)

func TestV2Compat_MultipleBodyMerged(t *testing.T) {
	t.Parallel()
	// Two body params are invalid v2 and collapse into one body schema.
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    post:
      parameters:
      - in: body
        name: a
        required: true
        schema: { type: string }
      - in: body
        name: b
        schema: { type: integer }
      responses: { '200': { description: ok } }
`)
	out, changed, err := preprocessV2ForCompatibility(in)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	s := string(out)
	if !strings.Contains(s, "in: body") || !strings.Contains(s, "name: body") {
		t.Fatalf("expected merged single body parameter, got:\n%s", s)
	}
}

func TestV2Compat_BodyAndFormData_ToFormData(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /upload:
    post:
      parameters:
      - in: body
        name: desc
        schema: { type: string }
      - in: formData
        name: file
        type: file
        required: true
      responses: { '200': { description: ok } }
`)
	out, changed, err := preprocessV2ForCompatibility(in)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	s := string(out)
	if strings.Contains(s, "in: body") {
		t.Fatalf("expected no body params after conversion to formData, got:\n%s", s)
	}
	if !strings.Contains(s, "multipart/form-data") {
		t.Fatalf("expected consumes multipart/form-data, got:\n%s", s)
	}
}

func TestV2Compat_UntouchedDocument(t *testing.T) {
	t.Parallel()
	in := []byte(`swagger: "2.0"
paths:
  /x:
    get:
      responses: { '200': { description: ok } }
`)
	out, changed, err := preprocessV2ForCompatibility(in)
	if err != nil || changed {
		t.Fatalf("expected no changes, got changed=%v err=%v", changed, err)
	}
	if string(out) != string(in) {
		t.Fatalf("untouched document must be returned as is")
	}
}

func TestConvertV2ToV3_NumericResponseCodes(t *testing.T) {
	t.Parallel()
	doc, err := convertV2ToV3([]byte(`swagger: "2.0"
info: { title: t, version: "1.0.0" }
paths:
  /x:
    get:
      responses:
        200: { description: ok }
`))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if doc.Paths.Find("/x") == nil {
		t.Fatalf("expected /x in converted document")
	}
}
