package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/transform"
)

// ErrUsage marks errors caused by invalid input rather than internal faults.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// describeError maps loader and engine failures onto multi-line usage errors
// that point at the offending part of the document. Other errors pass through.
func describeError(err error) error {
	var se *spec.SpecError
	if errors.As(err, &se) {
		msg := fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		if se.JSONPointer != "" {
			msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
		}
		return newUsageError(msg)
	}

	var te *transform.TransformError
	if errors.As(err, &te) {
		msg := fmt.Sprintf("transform: %s (%s)", te.Message, te.Code)
		if te.Path != "" || te.Method != "" {
			msg = fmt.Sprintf("%s\nOperation: %s", msg, strings.TrimSpace(strings.ToUpper(te.Method)+" "+te.Path))
		}
		if te.Component != "" {
			component := te.Component
			if te.Property != "" {
				component += "." + te.Property
			}
			msg = fmt.Sprintf("%s\nComponent: %s", msg, component)
		}
		return newUsageError(msg)
	}
	return err
}
