// Package shared contains the error taxonomy and the domain error value
// used across the application.
package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure with a stable numeric code, a default
// human-readable message and an HTTP status. The numeric codes are a wire
// contract and must never be renumbered or reused across classes.
//
// Code bands:
//   - 200:        success
//   - 1000-1999:  request parameter / validation errors
//   - 2000-2099:  authentication errors
//   - 2100-2199:  permission errors
//   - 3000-3999:  business rule violations
//   - 4000-4099:  resource errors
//   - 4100-4199:  external service errors
//   - 4200-4299:  transport-level request errors
//   - 5000-5099:  database errors
//   - 5100-5999:  system errors
type Kind int

const (
	// Success is the single non-failure kind.
	Success Kind = iota

	// ParameterError indicates a malformed request parameter.
	ParameterError
	// MissingParameter indicates a required parameter was absent.
	MissingParameter
	// InvalidParameterFormat indicates a parameter in the wrong format.
	InvalidParameterFormat
	// ParameterOutOfRange indicates a parameter outside its allowed range.
	ParameterOutOfRange
	// ValidationError indicates the request body failed schema validation.
	ValidationError

	// Unauthorized indicates a missing or expired credential.
	Unauthorized
	// InvalidToken indicates a credential that failed verification.
	InvalidToken
	// TokenExpired indicates an expired credential.
	TokenExpired
	// InvalidCredentials indicates a failed username/password check.
	InvalidCredentials

	// Forbidden indicates insufficient permissions.
	Forbidden
	// AccessDenied indicates access to the resource was denied.
	AccessDenied
	// RolePermissionDenied indicates the caller's role lacks the permission.
	RolePermissionDenied

	// BusinessError is the generic business rule violation.
	BusinessError
	// UserNotFound indicates the user does not exist.
	UserNotFound
	// UserAlreadyExists indicates the username is taken.
	UserAlreadyExists
	// UserDisabled indicates a disabled account.
	UserDisabled
	// UserRegistrationFailed indicates registration could not complete.
	UserRegistrationFailed

	// NotFound indicates the requested resource does not exist.
	NotFound
	// ResourceAlreadyExists indicates the resource already exists.
	ResourceAlreadyExists
	// ResourceConflict indicates the resource changed under the caller.
	ResourceConflict

	// ExternalServiceError indicates a failed external service call.
	ExternalServiceError
	// SMSServiceError indicates the SMS gateway failed.
	SMSServiceError
	// PaymentServiceError indicates the payment provider failed.
	PaymentServiceError
	// EmailServiceError indicates the mail provider failed.
	EmailServiceError

	// BadRequest mirrors a transport-level 400.
	BadRequest
	// MethodNotAllowed mirrors a transport-level 405.
	MethodNotAllowed
	// RateLimitExceeded mirrors a transport-level 429.
	RateLimitExceeded

	// DatabaseError is the generic database failure.
	DatabaseError
	// DatabaseConnectionError indicates the database could not be reached.
	DatabaseConnectionError
	// DuplicateKeyError indicates a uniqueness constraint violation.
	DuplicateKeyError
	// ForeignKeyError indicates a foreign key constraint violation.
	ForeignKeyError

	// InternalServerError is the catch-all system fault.
	InternalServerError
	// ServiceUnavailable indicates the service is temporarily down.
	ServiceUnavailable
	// ConfigurationError indicates broken system configuration.
	ConfigurationError
)

// KindInfo is the immutable registry entry for a Kind.
type KindInfo struct {
	Code    int
	Message string
	Status  int
}

// registry is populated once at init and read-only afterwards.
var registry = map[Kind]KindInfo{
	Success: {200, "ok", http.StatusOK},

	ParameterError:         {1001, "invalid parameter", http.StatusBadRequest},
	MissingParameter:       {1002, "missing required parameter", http.StatusBadRequest},
	InvalidParameterFormat: {1003, "invalid parameter format", http.StatusBadRequest},
	ParameterOutOfRange:    {1004, "parameter out of allowed range", http.StatusBadRequest},
	ValidationError:        {1010, "validation failed", http.StatusUnprocessableEntity},

	Unauthorized:       {2001, "not logged in or session expired", http.StatusUnauthorized},
	InvalidToken:       {2002, "invalid access token", http.StatusUnauthorized},
	TokenExpired:       {2003, "access token expired", http.StatusUnauthorized},
	InvalidCredentials: {2004, "invalid username or password", http.StatusUnauthorized},

	Forbidden:            {2100, "insufficient permissions", http.StatusForbidden},
	AccessDenied:         {2101, "access denied", http.StatusForbidden},
	RolePermissionDenied: {2102, "role lacks required permission", http.StatusForbidden},

	BusinessError:          {3000, "business rule violated", http.StatusBadRequest},
	UserNotFound:           {3101, "user not found", http.StatusNotFound},
	UserAlreadyExists:      {3102, "user already exists", http.StatusConflict},
	UserDisabled:           {3103, "user account disabled", http.StatusForbidden},
	UserRegistrationFailed: {3104, "user registration failed", http.StatusBadRequest},

	NotFound:              {4040, "requested resource not found", http.StatusNotFound},
	ResourceAlreadyExists: {4041, "resource already exists", http.StatusConflict},
	ResourceConflict:      {4042, "resource conflict", http.StatusConflict},

	ExternalServiceError: {4100, "external service call failed", http.StatusBadGateway},
	SMSServiceError:      {4101, "sms service failed", http.StatusBadGateway},
	PaymentServiceError:  {4102, "payment service failed", http.StatusBadGateway},
	EmailServiceError:    {4103, "email service failed", http.StatusBadGateway},

	BadRequest:        {4200, "bad request", http.StatusBadRequest},
	MethodNotAllowed:  {4201, "method not allowed", http.StatusMethodNotAllowed},
	RateLimitExceeded: {4290, "too many requests, try again later", http.StatusTooManyRequests},

	DatabaseError:           {5001, "database operation failed", http.StatusInternalServerError},
	DatabaseConnectionError: {5002, "database connection failed", http.StatusServiceUnavailable},
	DuplicateKeyError:       {5003, "duplicate value violates unique constraint", http.StatusConflict},
	ForeignKeyError:         {5004, "foreign key constraint violated", http.StatusConflict},

	InternalServerError: {5100, "internal server error", http.StatusInternalServerError},
	ServiceUnavailable:  {5101, "service temporarily unavailable", http.StatusServiceUnavailable},
	ConfigurationError:  {5102, "invalid system configuration", http.StatusInternalServerError},
}

// Lookup returns the registry entry for the kind. An unregistered kind maps
// to the InternalServerError entry so a programming mistake can never leave
// a response without a code.
func Lookup(k Kind) KindInfo {
	if info, ok := registry[k]; ok {
		return info
	}
	return registry[InternalServerError]
}

// Kinds returns all registered kinds. Used by tests asserting the
// no-code-collision invariant.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// Code returns the stable numeric code of the kind.
func (k Kind) Code() int { return Lookup(k).Code }

// Message returns the default human-readable message of the kind.
func (k Kind) Message() string { return Lookup(k).Message }

// Status returns the HTTP status emitted for the kind.
func (k Kind) Status() int { return Lookup(k).Status }

// Error is the domain failure value raised by business and service code.
// Code and transport status always derive from Kind, never from the call
// site, so every raise site of one kind agrees on wire semantics. The value
// is never mutated after construction and carries no logging side effects;
// logging happens once, at the handling boundary.
type Error struct {
	Kind    Kind
	Message string // optional override of the kind's default message
	Data    any    // optional structured payload forwarded to the client
	cause   error
}

// E constructs a domain error of the given kind with its default message.
func E(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Errorf constructs a domain error with a formatted message override.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithData returns a copy of the error carrying a structured payload.
func (e *Error) WithData(data any) *Error {
	c := *e
	c.Data = data
	return &c
}

// WithCause returns a copy of the error wrapping an underlying cause. The
// cause is visible to errors.Is/errors.As but never serialized to clients.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Message()
	}
	if e.cause != nil {
		return fmt.Sprintf("%s (code=%d): %v", msg, e.Kind.Code(), e.cause)
	}
	return fmt.Sprintf("%s (code=%d)", msg, e.Kind.Code())
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is makes errors.Is match two domain errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// UserMessage returns the message to put on the wire: the override when
// present, the kind's default otherwise.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Message()
}

// AsError extracts a domain error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HasKind reports whether err carries a domain error of the given kind.
func HasKind(err error, kind Kind) bool {
	if e, ok := AsError(err); ok {
		return e.Kind == kind
	}
	return false
}
