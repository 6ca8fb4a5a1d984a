// Package errors defines the tagged error kinds returned by the analysis
// engine. Presentation layers switch on Kind to build structured responses.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an analysis failure.
type Kind string

const (
	KindUnsupportedLanguage    Kind = "unsupported_language"
	KindUnknownExtension       Kind = "unknown_extension"
	KindParseFailure           Kind = "parse_failure"
	KindQuerySyntax            Kind = "query_syntax"
	KindRangeNotFound          Kind = "range_not_found"
	KindUnsupportedForLanguage Kind = "unsupported_for_language"
	KindSymbolNotFound         Kind = "symbol_not_found"
	KindIO                     Kind = "io"
	KindInvalidRequest         Kind = "invalid_request"
	KindInternal               Kind = "internal"
)

// Error is a failure detected at the boundary of one engine component.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Msg  string
	Err  error
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithPath adds the file path the error relates to.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg = msg + ": " + e.Err.Error()
		} else {
			msg = e.Err.Error()
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s failed for %s: %s", e.Kind, e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Kind, e.Op, msg)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target with an
// empty kind matches any *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// KindOf extracts the kind of err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}

// Message returns the human readable part of err without the kind prefix.
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		if e.Err != nil && e.Msg == "" {
			return e.Err.Error()
		}
		if e.Err != nil {
			return e.Msg + ": " + e.Err.Error()
		}
		return e.Msg
	}
	return err.Error()
}

// Body is the wire form of an error: {"kind": ..., "message": ...}.
type Body struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// BodyOf converts any error into its wire form.
func BodyOf(err error) *Body {
	if err == nil {
		return nil
	}
	return &Body{Kind: KindOf(err), Message: Message(err)}
}
