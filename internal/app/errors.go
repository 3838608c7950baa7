package app

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("not a member of this channel")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredential  = errors.New("invalid email or password")
	ErrDailyLimitExceeded = errors.New("daily ai chat limit exceeded")
	ErrAIUnavailable      = errors.New("ai assistant unavailable")
)

// ValidationError reports malformed or missing input, keyed by the JSON field
// name the client sent.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, problem string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: problem}}
}

func (e *ValidationError) Add(field, problem string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = problem
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// orNil returns nil when no field problems were collected.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
