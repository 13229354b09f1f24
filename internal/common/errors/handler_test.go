// internal/common/errors/handler_test.go
package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func (l *testLogger) Error(msg string, fields map[string]interface{}) {
	l.fields = fields
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeInvalidQuery, http.StatusBadRequest},
		{ErrCodeNoSourceData, http.StatusNotFound},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestCanceled, http.StatusRequestTimeout},
		{ErrCodeModelLoading, http.StatusServiceUnavailable},
		{ErrCodeSourceTimeout, http.StatusGatewayTimeout},
		{ErrCodeInferenceTimeout, http.StatusGatewayTimeout},
		{ErrCodeSourceUnavailable, http.StatusBadGateway},
		{ErrCodeInferenceFailed, http.StatusBadGateway},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeMissingCredential, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.code))
		})
	}
}

func TestErrorHandler_WriteHTTPError_StandardError(t *testing.T) {
	log := &testLogger{t: t}
	handler := NewErrorHandler(log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)

	handler.WriteHTTPError(rec, req, NewInvalidQueryError("query must not be empty"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope struct {
		Error StandardError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, ErrCodeInvalidQuery, envelope.Error.Code)
	assert.Equal(t, "query must not be empty", envelope.Error.Details)

	require.NotNil(t, log.fields)
	assert.Equal(t, "INVALID_QUERY", log.fields["errorCode"])
	assert.Equal(t, "VALIDATION", log.fields["errorCategory"])
}

func TestErrorHandler_WriteHTTPError_NormalizesPlainErrors(t *testing.T) {
	handler := NewErrorHandler(&testLogger{t: t})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/download", nil)

	handler.WriteHTTPError(rec, req, fmt.Errorf("pipeline blew up"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope struct {
		Error StandardError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, ErrCodeInternal, envelope.Error.Code)
	assert.Equal(t, "pipeline blew up", envelope.Error.Details)
	assert.False(t, envelope.Error.Retryable)
}

func TestErrorHandler_WriteHTTPError_CanceledContext(t *testing.T) {
	log := &testLogger{t: t}
	handler := NewErrorHandler(log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)

	handler.WriteHTTPError(rec, req, fmt.Errorf("lookup fan-out: %w", context.Canceled))

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)

	var envelope struct {
		Error StandardError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, ErrCodeRequestCanceled, envelope.Error.Code)
	assert.True(t, envelope.Error.Retryable)
	assert.Equal(t, "REQUEST", log.fields["errorCategory"])
}

func TestErrorHandler_WriteHTTPError_UnwrapsWrappedErrors(t *testing.T) {
	handler := NewErrorHandler(&testLogger{t: t})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", nil)

	wrapped := fmt.Errorf("processing: %w", NewRateLimitedError("upstream throttled"))
	handler.WriteHTTPError(rec, req, wrapped)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
