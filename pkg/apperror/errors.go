package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindInternal           Kind = "INTERNAL"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindNotFound           Kind = "NOT_FOUND"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindUpstreamGeneration Kind = "UPSTREAM_GENERATION_FAILURE"
	KindRateLimited        Kind = "RATE_LIMITED"
	KindDuplicateReference Kind = "DUPLICATE_REFERENCE"
)

// Error carries a Kind, a user-facing message and optional details.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUpstreamGeneration = &Error{Kind: KindUpstreamGeneration, Message: "failed to generate AI response"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "too many requests"}
	ErrDuplicateReference = &Error{Kind: KindDuplicateReference, Message: "reference already attached"}
)

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func UpstreamGeneration(err error) *Error {
	return &Error{Kind: KindUpstreamGeneration, Message: ErrUpstreamGeneration.Message, Err: err}
}

func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

func DuplicateReference(err error) *Error {
	return &Error{Kind: KindDuplicateReference, Message: ErrDuplicateReference.Message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
