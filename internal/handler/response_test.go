package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestErrorIncludesRequestIDOnServerErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(logging.WithRequestID(req.Context(), "req-7"))

	rr := httptest.NewRecorder()
	Error(rr, req, domain.ErrInternal("failed to find user", assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, map[string]string{"error": "failed to find user", "requestId": "req-7"}, errorBody(t, rr))

	rr = httptest.NewRecorder()
	Error(rr, req, assert.AnError)
	assert.Equal(t, map[string]string{"error": "internal server error", "requestId": "req-7"}, errorBody(t, rr))

	rr = httptest.NewRecorder()
	Error(rr, req, domain.ErrNotFound("user not found"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, map[string]string{"error": "user not found"}, errorBody(t, rr))
}

// chunked hides the reader type so the request has no known length.
func chunked(s string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/session", io.NopCloser(strings.NewReader(s)))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	return req
}

func TestDecodeOptionalJSON(t *testing.T) {
	var req domain.SignInRequest
	require.NoError(t, DecodeOptionalJSON(chunked(`{"firstName":"Kwame","lastName":"Boateng"}`), &req))
	assert.Equal(t, "Kwame", req.FirstName)
	assert.Equal(t, "Boateng", req.LastName)

	req = domain.SignInRequest{}
	require.NoError(t, DecodeOptionalJSON(chunked(""), &req))
	assert.Empty(t, req.FirstName)

	require.NoError(t, DecodeOptionalJSON(httptest.NewRequest(http.MethodPost, "/api/session", nil), &req))

	err := DecodeOptionalJSON(chunked("{nope"), &req)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	err = DecodeOptionalJSON(chunked(`{"firstName":"`+strings.Repeat("a", 101)+`"}`), &req)
	appErr, ok = domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "firstName must be at most 100 characters", appErr.Message)
}
