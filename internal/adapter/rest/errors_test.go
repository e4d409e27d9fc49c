package rest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-api/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func noClassify(error) (shared.Kind, bool) { return shared.Success, false }

// respond runs err through a router and decodes the envelope it wrote.
func respond(t *testing.T, router *ErrorRouter, err error) (int, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	router.Respond(c, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestRespondDomainError(t *testing.T) {
	router := NewErrorRouter(discardLogger(), noClassify)

	status, env := respond(t, router, shared.Errorf(shared.BusinessError, "fully booked"))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, 3000, env.Code)
	assert.Equal(t, "fully booked", env.Message)
	assert.NotZero(t, env.Timestamp)
}

// A domain error that wraps a database error must keep its own kind; the
// classifier only sees errors nothing else claimed.
func TestRespondDomainErrorBeatsClassifier(t *testing.T) {
	classify := func(error) (shared.Kind, bool) { return shared.DuplicateKeyError, true }
	router := NewErrorRouter(discardLogger(), classify)

	wrapped := shared.E(shared.UserAlreadyExists).WithCause(errors.New("duplicate key value violates unique constraint"))
	status, env := respond(t, router, wrapped)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 3102, env.Code)
}

func TestRespondClassifiedConstraint(t *testing.T) {
	classify := func(err error) (shared.Kind, bool) {
		if strings.Contains(err.Error(), "unique") {
			return shared.DuplicateKeyError, true
		}
		return shared.Success, false
	}
	router := NewErrorRouter(discardLogger(), classify)

	status, env := respond(t, router, errors.New(`ERROR: duplicate key value violates unique constraint "schedules_doctor_date_key"`))

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 5003, env.Code)
	assert.Equal(t, shared.DuplicateKeyError.Message(), env.Message)
}

func TestRespondValidationNamesField(t *testing.T) {
	router := NewErrorRouter(discardLogger(), noClassify)

	type form struct {
		Name  string `validate:"required"`
		Email string `validate:"omitempty,email"`
	}
	vErr := validator.New().Struct(form{})
	require.Error(t, vErr)

	status, env := respond(t, router, vErr)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, 1010, env.Code)
	assert.Contains(t, env.Message, "name")
	assert.Contains(t, env.Message, "required")
	require.NotNil(t, env.Data)
}

func TestRespondBodyDecodeErrors(t *testing.T) {
	router := NewErrorRouter(discardLogger(), noClassify)

	var typeTarget struct {
		Age int `json:"age"`
	}
	typeErr := json.Unmarshal([]byte(`{"age": "ten"}`), &typeTarget)
	require.Error(t, typeErr)
	status, env := respond(t, router, typeErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 1001, env.Code)
	assert.Contains(t, env.Message, "age")

	syntaxErr := json.Unmarshal([]byte(`{not json`), &typeTarget)
	require.Error(t, syntaxErr)
	status, env = respond(t, router, syntaxErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 1001, env.Code)

	status, env = respond(t, router, io.EOF)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 1002, env.Code)
}

func TestRespondTransportError(t *testing.T) {
	router := NewErrorRouter(discardLogger(), noClassify)

	cases := []struct {
		status   int
		wantCode int
	}{
		{http.StatusNotFound, 4040},
		{http.StatusForbidden, 2100},
		{http.StatusMethodNotAllowed, 4201},
		{http.StatusTooManyRequests, 4290},
		{http.StatusServiceUnavailable, 5101},
		{http.StatusTeapot, 5100},
	}
	for _, tc := range cases {
		status, env := respond(t, router, &HTTPError{Status: tc.status})
		assert.Equal(t, tc.wantCode, env.Code)
		if tc.wantCode != 5100 {
			assert.Equal(t, tc.status, status)
		}
	}
}

// An error nothing recognizes must reach the client as the one generic
// system failure, with no internal detail in the message.
func TestRespondUnknownError(t *testing.T) {
	router := NewErrorRouter(discardLogger(), noClassify)

	status, env := respond(t, router, errors.New("pointer dereference through nil map at line 42"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, 5100, env.Code)
	assert.Equal(t, shared.InternalServerError.Message(), env.Message)
	assert.NotContains(t, env.Message, "pointer")
	assert.Nil(t, env.Data)
}

// An envelope without a payload must omit the data key entirely rather than
// serialize it as null, so only the raw body can prove it.
func TestNoPayloadOmitsDataKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	OK(c, nil)
	assert.NotContains(t, rec.Body.String(), `"data"`)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	NewErrorRouter(discardLogger(), noClassify).Respond(c, shared.E(shared.NotFound))
	assert.NotContains(t, rec.Body.String(), `"data"`)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "patient_name", toSnake("PatientName"))
	assert.Equal(t, "name", toSnake("Name"))
	assert.Equal(t, "max_patients", toSnake("MaxPatients"))
}
