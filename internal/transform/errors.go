package transform

import (
	"fmt"
	"strings"
)

// ErrorCode categorizes engine failures. Every failure aborts the pass.
type ErrorCode string

const (
	UnsupportedSchema    ErrorCode = "UnsupportedSchema"
	DanglingReference    ErrorCode = "DanglingReference"
	UnsupportedOperation ErrorCode = "UnsupportedOperation"
	MalformedDocument    ErrorCode = "MalformedDocument"
	DuplicateAction      ErrorCode = "DuplicateAction"
)

// TransformError carries enough context (operation or component) for a host
// to report the offending part of the document.
type TransformError struct {
	Code      ErrorCode
	Message   string
	Path      string
	Method    string
	Component string
	Property  string
	Cause     error
}

func (e *TransformError) Error() string {
	var where []string
	if e.Method != "" || e.Path != "" {
		where = append(where, strings.TrimSpace(strings.ToUpper(e.Method)+" "+e.Path))
	}
	if e.Component != "" {
		c := "component " + e.Component
		if e.Property != "" {
			c += "." + e.Property
		}
		where = append(where, c)
	}
	if len(where) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(where, ", "), e.Message)
}

func (e *TransformError) Unwrap() error { return e.Cause }

func unsupported(format string, args ...any) *TransformError {
	return &TransformError{Code: UnsupportedSchema, Message: fmt.Sprintf(format, args...)}
}

// atOperation fills in the operation context of err when it is missing.
func atOperation(err error, path, method string) error {
	if te, ok := err.(*TransformError); ok {
		if te.Path == "" {
			te.Path = path
		}
		if te.Method == "" {
			te.Method = method
		}
	}
	return err
}

// atComponent fills in the component context of err when it is missing.
func atComponent(err error, component, property string) error {
	if te, ok := err.(*TransformError); ok {
		if te.Component == "" {
			te.Component = component
			te.Property = property
		}
	}
	return err
}
