package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/transform"
)

func TestDescribeError_SpecError(t *testing.T) {
	t.Parallel()
	err := describeError(fmt.Errorf("load: %w", &spec.SpecError{
		Code:        spec.ParseError,
		Message:     "spec: document has no paths",
		Location:    "/tmp/api.yaml",
		JSONPointer: "#/paths",
	}))
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T", err)
	}
	want := "spec: spec: document has no paths\nLocation: /tmp/api.yaml\nPointer: #/paths"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n%s", err)
	}
}

func TestDescribeError_TransformError(t *testing.T) {
	t.Parallel()
	err := describeError(&transform.TransformError{
		Code:      transform.DanglingReference,
		Message:   `schema "Ghost" is not defined`,
		Path:      "/pets",
		Method:    "get",
		Component: "Pet",
		Property:  "owner",
	})
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T", err)
	}
	for _, line := range []string{
		`transform: schema "Ghost" is not defined (DanglingReference)`,
		"Operation: GET /pets",
		"Component: Pet.owner",
	} {
		if !strings.Contains(err.Error(), line) {
			t.Fatalf("expected %q in:\n%s", line, err)
		}
	}
}

func TestDescribeError_PassesOtherErrors(t *testing.T) {
	t.Parallel()
	plain := errors.New("boom")
	if got := describeError(plain); got != plain {
		t.Fatalf("expected the original error, got %v", got)
	}
}
