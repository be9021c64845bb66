package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code is a stable error category.
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeFileSystem Code = "FS_ERROR"
	CodeBuild      Code = "BUILD_ERROR"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Error is the structured error raised by btools operations.
type Error struct {
	Code    Code
	Message string
	Context map[string]any
	Cause   error
}

// Error returns the message, followed by the cause when one is wrapped.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code, message and context.
func New(code Code, msg string, ctx map[string]any) *Error {
	return &Error{Code: code, Message: msg, Context: copyContext(ctx)}
}

// Wrap creates an Error wrapping cause. Returns nil if cause is nil.
func Wrap(code Code, msg string, cause error, ctx map[string]any) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Context: copyContext(ctx), Cause: cause}
}

// Validation creates a VALIDATION_ERROR.
func Validation(msg string, ctx map[string]any) *Error {
	return New(CodeValidation, msg, ctx)
}

// FileSystem creates an FS_ERROR.
func FileSystem(msg string, ctx map[string]any) *Error {
	return New(CodeFileSystem, msg, ctx)
}

// Build creates a BUILD_ERROR.
func Build(msg string, ctx map[string]any) *Error {
	return New(CodeBuild, msg, ctx)
}

// Internal wraps a failure that indicates a bug rather than bad input, such
// as an embedded schema that does not compile.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Cause: cause}
}

// GetCode extracts the code from err, or "" if err is not (or does not wrap) an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is or wraps an *Error with the given code.
func IsCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// As returns (*Error, true) if err is or wraps an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case CodeValidation:
		return 2
	case CodeFileSystem:
		return 3
	case CodeBuild:
		return 4
	default:
		return 1
	}
}

// Format renders err for the terminal:
//
//	Error: <message>
//
//	Context:
//	  key: <json value>
//
// The context block is omitted when there is no context.
func Format(err error) string {
	if err == nil {
		return ""
	}
	e, ok := As(err)
	if !ok {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.Error())
	if len(e.Context) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n\nContext:")
	for _, k := range keys {
		v, err := json.Marshal(e.Context[k])
		if err != nil {
			v = []byte(fmt.Sprintf("%v", e.Context[k]))
		}
		fmt.Fprintf(&b, "\n  %s: %s", k, v)
	}
	return b.String()
}

func copyContext(ctx map[string]any) map[string]any {
	if len(ctx) == 0 {
		return nil
	}
	cp := make(map[string]any, len(ctx))
	for k, v := range ctx {
		cp[k] = v
	}
	return cp
}
