package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_BlocksFileURL(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "file:///etc/hosts")
	if err == nil {
		t.Fatalf("expected error for file:// URL")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != InputError {
		t.Fatalf("expected InputError, got %v", se.Code)
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/spec.yaml")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("expected InputError, got %v (%T)", err, err)
	}
}

func TestLoad_EmptyInputAndMissingFile(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "  ", filepath.Join(t.TempDir(), "missing.json")} {
		_, err := Load(context.Background(), input)
		var se *SpecError
		if !errors.As(err, &se) || se.Code != InputError {
			t.Fatalf("input %q: expected InputError, got %v (%T)", input, err, err)
		}
	}
}

func TestLoad_NetworkError(t *testing.T) {
	t.Parallel()
	// Unused port to provoke a quick network failure.
	url := "http://127.0.0.1:1/spec.yaml"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Load(ctx, url, WithHTTPTimeout(200*time.Millisecond), WithMaxRetries(2), WithBackoffBase(10*time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
}

func TestLoad_HTTPRetriesTransientFailures(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"openapi":"3.0.0","info":{"title":"Remote","version":"1"},"paths":{"/ping":{"get":{"responses":{"204":{"description":"pong"}}}}}}`))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/openapi.json", WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if doc.Info.Title != "Remote" || len(doc.Paths.Items) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestLoad_HTTPClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/missing.json", WithBackoffBase(time.Millisecond))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v (%T)", err, err)
	}
	if !strings.Contains(se.Message, "http 404") {
		t.Fatalf("unexpected message: %s", se.Message)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single request, got %d", got)
	}
}

const incompleteV3 = `openapi: 3.0.0
info:
  title: Bad
  version: "1.0.0"
paths:
  "/pet":
    get:
      responses: {}
`

func TestLoad_V3_InvalidSpec(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "bad.yaml", incompleteV3)

	_, err := Load(context.Background(), path, WithValidation(true))
	if err == nil {
		t.Fatalf("expected validation error for incomplete responses")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ValidationError && se.Code != ParseError { // parser version differences
		t.Fatalf("expected ValidationError/ParseError, got %v", se.Code)
	}
	if se.Location == "" {
		t.Fatalf("expected location to be set")
	}
}

func TestLoad_V3_ValidationIsOptional(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "bad.yaml", incompleteV3)

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load without validation: %v", err)
	}
	if doc.Version() != 3 {
		t.Fatalf("expected version 3, got %d", doc.Version())
	}
}

func TestLoad_V2(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger.yaml", `swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
paths:
  "/hello":
    get:
      responses:
        "200":
          description: ok
`)

	doc, err := Load(context.Background(), path, WithValidation(true))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Version() != 2 {
		t.Fatalf("expected Swagger 2, got %d", doc.Version())
	}
	if len(doc.Paths.Items) != 1 || doc.Paths.Items[0].Path != "/hello" {
		t.Fatalf("unexpected paths: %+v", doc.Paths.Items)
	}
}

func TestLoad_V2_ValidationFailure(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "swagger-bad.yaml", `swagger: "2.0"
paths: {}
`)

	_, err := Load(context.Background(), path, WithValidation(true))
	if err == nil {
		t.Fatalf("expected conversion or validation error")
	}
	var se *SpecError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpecError, got %T", err)
	}
	if se.Code != ConversionError && se.Code != ValidationError && se.Code != ParseError {
		t.Fatalf("expected ConversionError/ValidationError/ParseError, got %v", se.Code)
	}
}

func TestLoad_UnknownVersion(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "unknown.yaml", `info: {title: x}
paths: {}
`)

	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
}

func TestLoad_MissingPaths(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "nopaths.json", `{"openapi": "3.0.1", "info": {"title": "x", "version": "1"}}`)

	_, err := Load(context.Background(), path)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ParseError {
		t.Fatalf("expected ParseError, got %v (%T)", err, err)
	}
	if se.JSONPointer != "#/paths" {
		t.Fatalf("expected pointer #/paths, got %q", se.JSONPointer)
	}
	if se.Location != path {
		t.Fatalf("expected location %q, got %q", path, se.Location)
	}
}

func TestLoad_V2_DanglingRefIsConversionError(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "dangling.yaml", `swagger: "2.0"
info:
  title: Sample
  version: "1.0.0"
paths:
  "/pets":
    get:
      responses:
        "200":
          description: ok
          schema:
            $ref: "#/definitions/Missing"
`)

	_, err := Load(context.Background(), path, WithValidation(true))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != ConversionError {
		t.Fatalf("expected ConversionError, got %v (%T)", err, err)
	}
	if !strings.Contains(se.Message, "Missing") {
		t.Fatalf("expected message to name the missing definition, got %q", se.Message)
	}
	if se.Location != path {
		t.Fatalf("expected location %q, got %q", path, se.Location)
	}

	// Without validation the reference is left for the transformer to report.
	if _, err := Load(context.Background(), path); err != nil {
		t.Fatalf("load without validation: %v", err)
	}
}

func TestLoad_JSONEscapedSlashes(t *testing.T) {
	t.Parallel()
	path := writeSpec(t, "escaped.json", `{
  "openapi": "3.0.0",
  "info": {"title": "Escaped", "version": "1"},
  "paths": {
    "\/pets\/list": {
      "get": {"responses": {"200": {"description": "ok"}}}
    }
  }
}`)

	for _, validate := range []bool{false, true} {
		doc, err := Load(context.Background(), path, WithValidation(validate))
		if err != nil {
			t.Fatalf("load (validate=%v): %v", validate, err)
		}
		if len(doc.Paths.Items) != 1 || doc.Paths.Items[0].Path != "/pets/list" {
			t.Fatalf("unexpected paths (validate=%v): %+v", validate, doc.Paths.Items)
		}
	}
}
