package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, 400, "bad_request", "invalid input")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "invalid input", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestWriteErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorWithDetails(w, 400, "bad_request", "validation failed", "email: must be a valid email address")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "email: must be a valid email address", resp.Details)
}

func TestCommonErrorWriters(t *testing.T) {
	tests := []struct {
		name       string
		fn         func(w *httptest.ResponseRecorder)
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(w *httptest.ResponseRecorder) { WriteBadRequest(w, "m") }, 400, "bad_request"},
		{"unauthorized", func(w *httptest.ResponseRecorder) { WriteUnauthorized(w, "m") }, 401, "unauthorized"},
		{"forbidden", func(w *httptest.ResponseRecorder) { WriteForbidden(w, "m") }, 403, "forbidden"},
		{"not found", func(w *httptest.ResponseRecorder) { WriteNotFound(w, "m") }, 404, "not_found"},
		{"conflict", func(w *httptest.ResponseRecorder) { WriteConflict(w, "m") }, 409, "conflict"},
		{"too many requests", func(w *httptest.ResponseRecorder) { WriteTooManyRequests(w, "m") }, 429, "rate_limit_exceeded"},
		{"internal", func(w *httptest.ResponseRecorder) { WriteInternalError(w, "m") }, 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.fn(w)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, 201, map[string]string{"message": "created"})

	assert.Equal(t, 201, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "created", resp["message"])
}
