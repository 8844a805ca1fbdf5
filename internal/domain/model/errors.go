package model

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrCanceled       = errors.New("operation canceled")
	ErrAuthentication = errors.New("local authentication failed")
	ErrBusy           = errors.New("a submission is already in progress")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrNoJournal      = errors.New("submission journal is not configured")
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RequestError is a failed backend call, surfaced as a banner.
type RequestError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("request failed (%d): %s", e.Status, msg)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsRequest(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// IsUnauthorized reports whether the backend rejected the credentials.
func IsUnauthorized(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusUnauthorized
}
