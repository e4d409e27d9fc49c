package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"clinic-api/internal/shared"
)

// HTTPError is a transport-level failure carrying only a status code. The
// router raises it for unknown routes and disallowed methods; handlers may
// raise it where no richer kind applies.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d %s", e.Status, http.StatusText(e.Status))
}

// fieldIssue is the per-field detail attached to validation failures.
type fieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ErrorRouter turns any error escaping a handler into exactly one envelope.
// Classification runs in fixed order: domain errors first, then database
// constraint violations, then storage faults, then request decoding and
// validation failures, then bare transport errors, and finally the
// catch-all. The order matters: a wrapped domain error must win over
// whatever database error it wraps.
type ErrorRouter struct {
	log      *slog.Logger
	classify func(error) (shared.Kind, bool)
}

// NewErrorRouter creates an ErrorRouter. classify maps storage driver
// errors to kinds; pg.ClassifyError is the production implementation.
func NewErrorRouter(log *slog.Logger, classify func(error) (shared.Kind, bool)) *ErrorRouter {
	if classify == nil {
		classify = func(error) (shared.Kind, bool) { return shared.Success, false }
	}
	return &ErrorRouter{log: log, classify: classify}
}

// Respond writes the envelope for err and logs it once. Expected failures
// log at warn, faults at error with the cause chain.
func (r *ErrorRouter) Respond(c *gin.Context, err error) {
	kind, message, data := r.route(err)

	attrs := []any{
		"method", c.Request.Method,
		"path", c.FullPath(),
		"code", kind.Code(),
	}
	if kind.Status() >= http.StatusInternalServerError {
		r.log.Error("request failed", append(attrs, "error", err)...)
	} else {
		r.log.Warn("request rejected", append(attrs, "reason", message)...)
	}

	Fail(c, kind, message, data)
}

func (r *ErrorRouter) route(err error) (shared.Kind, string, any) {
	// 1. Domain errors carry their own kind and message.
	if e, ok := shared.AsError(err); ok {
		return e.Kind, e.UserMessage(), e.Data
	}

	// 2. Constraint violations, then 3. other storage faults. The
	// classifier checks SQLSTATEs before falling back to message sniffing,
	// so a duplicate key lands on its conflict kind and not on the generic
	// database kind.
	if kind, ok := r.classify(err); ok {
		return kind, "", nil
	}

	// 4. Request decoding and validation failures.
	if kind, message, data, ok := routeBindingError(err); ok {
		return kind, message, data
	}

	// 5. Bare transport errors.
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return kindForStatus(httpErr.Status), "", nil
	}

	// 6. The catch-all. Nothing above recognized the error, so keep the
	// wire generic and put the detail in the log only.
	r.log.Error("unclassified error", "error", err, "stack", string(debug.Stack()))
	return shared.InternalServerError, "", nil
}

// routeBindingError maps body decoding and schema validation failures to
// parameter kinds, naming the offending field in the message.
func routeBindingError(err error) (shared.Kind, string, any, bool) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		issues := make([]fieldIssue, 0, len(vErrs))
		for _, fe := range vErrs {
			issues = append(issues, fieldIssue{
				Field:  fieldName(fe),
				Reason: fieldReason(fe),
			})
		}
		first := issues[0]
		msg := fmt.Sprintf("field '%s' %s", first.Field, first.Reason)
		if len(issues) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(issues)-1)
		}
		return shared.ValidationError, msg, issues, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		msg := fmt.Sprintf("field '%s' must be of type %s", typeErr.Field, typeErr.Type)
		return shared.ParameterError, msg, nil, true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return shared.ParameterError, "request body is not valid JSON", nil, true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return shared.MissingParameter, "request body is empty", nil, true
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		msg := fmt.Sprintf("'%s' is not a valid number", numErr.Num)
		return shared.InvalidParameterFormat, msg, nil, true
	}

	return shared.Success, "", nil, false
}

// kindForStatus maps a bare HTTP status to its transport kind.
func kindForStatus(status int) shared.Kind {
	switch status {
	case http.StatusBadRequest:
		return shared.BadRequest
	case http.StatusUnauthorized:
		return shared.Unauthorized
	case http.StatusForbidden:
		return shared.Forbidden
	case http.StatusNotFound:
		return shared.NotFound
	case http.StatusMethodNotAllowed:
		return shared.MethodNotAllowed
	case http.StatusTooManyRequests:
		return shared.RateLimitExceeded
	case http.StatusServiceUnavailable:
		return shared.ServiceUnavailable
	default:
		return shared.InternalServerError
	}
}

// fieldName renders a struct field name the way it appears on the wire.
func fieldName(fe validator.FieldError) string {
	return toSnake(fe.Field())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// fieldReason renders a validator tag as a short human-readable reason.
func fieldReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match the format %s", fe.Param())
	default:
		return fmt.Sprintf("failed the '%s' rule", fe.Tag())
	}
}
