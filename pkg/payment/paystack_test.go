package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaystackVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref_abc123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{
			"status":"success","reference":"ref_abc123","amount":10000,"currency":"GHS",
			"paid_at":"2025-09-01T10:00:00.000Z","customer":{"email":"ama@example.com"},
			"metadata":{"videoId":"gis_documentary_001"}}}`))
	}))
	defer srv.Close()

	gw := NewPaystackGateway("sk_test", srv.URL+"/")
	tx, err := gw.Verify(context.Background(), "ref_abc123")
	require.NoError(t, err)

	assert.True(t, tx.Successful())
	assert.Equal(t, int64(10000), tx.Amount)
	assert.Equal(t, "GHS", tx.Currency)
	assert.Equal(t, "ama@example.com", tx.CustomerEmail)
	assert.Equal(t, "gis_documentary_001", tx.Metadata["videoId"])
	require.NotNil(t, tx.PaidAt)
}

func TestPaystackVerifyNotSuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"abandoned","reference":"ref_x","amount":10000,"currency":"GHS"}}`))
	}))
	defer srv.Close()

	tx, err := NewPaystackGateway("sk_test", srv.URL).Verify(context.Background(), "ref_x")
	require.NoError(t, err)
	assert.False(t, tx.Successful())
	assert.Equal(t, StatusAbandoned, tx.Status)
}

func TestPaystackVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	_, err := NewPaystackGateway("sk_test", srv.URL).Verify(context.Background(), "nope")
	var verr *VerifyError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, http.StatusBadRequest, verr.StatusCode)
	assert.Equal(t, "Transaction reference not found", verr.Message)
}

func TestPaystackVerifyUpstreamGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := NewPaystackGateway("sk_test", srv.URL).Verify(context.Background(), "ref")
	var verr *VerifyError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, http.StatusBadGateway, verr.StatusCode)
}

func TestPaystackVerifyNotConfigured(t *testing.T) {
	_, err := NewPaystackGateway("", "").Verify(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMockGateway(t *testing.T) {
	gw := NewMockGateway(10000, "GHS")
	ctx := context.Background()

	tx, err := gw.Verify(ctx, "ref_ok")
	require.NoError(t, err)
	assert.True(t, tx.Successful())

	tx, err = gw.Verify(ctx, "fail_1")
	require.NoError(t, err)
	assert.False(t, tx.Successful())

	_, err = gw.Verify(ctx, "missing_1")
	var verr *VerifyError
	assert.True(t, errors.As(err, &verr))
}
