package service

import (
	"errors"
	"strings"
)

// Book settings validation
var (
	ErrInvalidChildType     = errors.New("child type is not an allowed book type")
	ErrAllowedTypesRequired = errors.New("at least one allowed book type is required")
	ErrChildTypeRequired    = errors.New("child type is required")
	ErrUnknownContentType   = errors.New("unknown content type")
)

// Tokens
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenSecretUnset = errors.New("token secret is not configured")
)

// FieldError ties a validation failure to the form field it belongs to.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// ValidationErrors collects every field error found in one submission.
// errors.Is matches any of the underlying sentinels.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Err.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe.Err)
	}
	return errs
}

// For returns the first message recorded for field, or "".
func (v ValidationErrors) For(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}
