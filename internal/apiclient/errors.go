package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for common API error classes. *APIError unwraps to one of
// these when the status and detail identify it.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("inactive user")
	ErrEmailTaken         = errors.New("email already registered")
	ErrServer             = errors.New("server error")
)

// Known detail strings returned with HTTP 400.
const (
	detailBadCredentials = "Incorrect email or password"
	detailInactiveUser   = "Inactive user"
	detailNoPermission   = "Not enough permissions"
	detailEmailExists    = "already exists"
)

const maxDetailLen = 200

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Detail     string
	RequestID  string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Unwrap returns the sentinel matching this error, if any
func (e *APIError) Unwrap() error {
	return e.kind
}

// validationItem is one entry of a 422 detail list.
type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts a human-readable detail from an error body. Bodies
// are {"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]};
// anything else is returned as trimmed text.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if json.Unmarshal(envelope.Detail, &s) == nil {
			return s
		}
		var items []validationItem
		if json.Unmarshal(envelope.Detail, &items) == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if loc := formatLoc(it.Loc); loc != "" {
					parts = append(parts, loc+": "+it.Msg)
				} else {
					parts = append(parts, it.Msg)
				}
			}
			return strings.Join(parts, "; ")
		}
		return string(envelope.Detail)
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxDetailLen {
		text = text[:maxDetailLen] + "..."
	}
	return text
}

// formatLoc joins a pydantic location, dropping the leading "body"/"query".
func formatLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path") {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// classify maps a status code and detail to a sentinel error.
func classify(status int, detail string) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= 500:
		return ErrServer
	case status == http.StatusBadRequest:
		switch {
		case detail == detailBadCredentials:
			return ErrInvalidCredentials
		case detail == detailInactiveUser:
			return ErrInactiveUser
		case detail == detailNoPermission:
			return ErrForbidden
		case strings.Contains(detail, detailEmailExists):
			return ErrEmailTaken
		}
	}
	return nil
}

func newAPIError(status int, body []byte, requestID string) *APIError {
	detail := parseDetail(body)
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{
		StatusCode: status,
		Detail:     detail,
		RequestID:  requestID,
		kind:       classify(status, detail),
	}
}

// IsUnauthorized reports whether err means the session is no longer accepted
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Detail returns the server's detail message for err, or "" when err is not
// an API error.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
