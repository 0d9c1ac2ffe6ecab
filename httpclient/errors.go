package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates a request or connection timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, etc).
	ErrCodeConnection
	// ErrCodeValidation indicates the server rejected the request body (400).
	ErrCodeValidation
	// ErrCodeAuth indicates an authentication/authorization failure (401/403).
	ErrCodeAuth
	// ErrCodeNotFound indicates the resource was not found (404).
	ErrCodeNotFound
	// ErrCodeServer indicates a server-side error (5xx).
	ErrCodeServer
	// ErrCodeUnknown indicates an unclassified error.
	ErrCodeUnknown
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeValidation:
		return "validation"
	case ErrCodeAuth:
		return "auth"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIMessage is the decoded error body of the backend's wire contract.
// Non-2xx responses carry either {"detail": "..."}, {"non_field_errors":
// ["..."]}, or per-field validation errors {"<field>": ["..."]}.
type APIMessage struct {
	// Detail is a single human-readable message.
	Detail string
	// NonFieldErrors are validation errors not tied to a specific field.
	NonFieldErrors []string
	// FieldErrors maps field names to their validation messages.
	FieldErrors map[string][]string
}

// IsZero reports whether no message content was decoded.
func (m *APIMessage) IsZero() bool {
	return m == nil || (m.Detail == "" && len(m.NonFieldErrors) == 0 && len(m.FieldErrors) == 0)
}

// decodeAPIMessage parses an error response body into an APIMessage.
// Unrecognized or non-JSON bodies yield a zero message, never an error:
// callers classify by status code, the message is advisory.
func decodeAPIMessage(body []byte) *APIMessage {
	msg := &APIMessage{}
	if len(body) == 0 {
		return msg
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return msg
	}
	for key, val := range raw {
		switch key {
		case "detail":
			_ = json.Unmarshal(val, &msg.Detail)
		case "non_field_errors":
			_ = json.Unmarshal(val, &msg.NonFieldErrors)
		default:
			var msgs []string
			if err := json.Unmarshal(val, &msgs); err != nil {
				// Some fields carry a single string instead of a list.
				var single string
				if err := json.Unmarshal(val, &single); err != nil {
					continue
				}
				msgs = []string{single}
			}
			if msg.FieldErrors == nil {
				msg.FieldErrors = make(map[string][]string)
			}
			msg.FieldErrors[key] = msgs
		}
	}
	return msg
}

// Error is a structured HTTP client error with classification.
type Error struct {
	// StatusCode is the HTTP status code (0 for connection-level errors).
	StatusCode int
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Body is the original response body (may be nil).
	Body []byte
	// API is the decoded error body, if any.
	API *APIMessage
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{
		Code:    ErrCodeTimeout,
		Message: err.Error(),
		Err:     err,
	}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{
		Code:    ErrCodeConnection,
		Message: err.Error(),
		Err:     err,
	}
}

// NewRequestError creates an unclassified client-side error (bad body, bad URL).
func NewRequestError(msg string) *Error {
	return &Error{
		Code:    ErrCodeUnknown,
		Message: msg,
	}
}

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	e := &Error{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Body:       body,
		API:        decodeAPIMessage(body),
	}
	switch {
	case statusCode == 400:
		e.Code = ErrCodeValidation
	case statusCode == 401 || statusCode == 403:
		e.Code = ErrCodeAuth
	case statusCode == 404:
		e.Code = ErrCodeNotFound
	case statusCode >= 500:
		e.Code = ErrCodeServer
	default:
		e.Code = ErrCodeUnknown
	}
	if e.API.Detail != "" {
		e.Message = e.API.Detail
	}
	return e
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsNetwork checks if an error is a transport-level failure (no response).
func IsNetwork(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Code == ErrCodeConnection || e.Code == ErrCodeTimeout)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeValidation
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeAuth
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeNotFound
}

// IsServerError checks if an error is a server error.
func IsServerError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeServer
}

// FieldErrors extracts per-field validation messages from an error, if any.
// Form-error mappers use this to highlight specific fields.
func FieldErrors(err error) map[string][]string {
	var e *Error
	if errors.As(err, &e) && e.API != nil {
		return e.API.FieldErrors
	}
	return nil
}
