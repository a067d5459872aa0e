package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gisvideo/backend/internal/changefeed"
	"github.com/gisvideo/backend/internal/config"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/handler"
	"github.com/gisvideo/backend/internal/repository/docstore"
	"github.com/gisvideo/backend/internal/service"
	"github.com/gisvideo/backend/pkg/payment"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoID = "gis_documentary_001"

type testEnv struct {
	router   *Router
	identity *service.IdentityService
}

func newTestEnv(t *testing.T, gw payment.Gateway) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := docstore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hub := changefeed.NewHub()
	stores := service.Stores{
		Users:    docstore.NewUserRepository(db),
		Videos:   docstore.NewVideoRepository(db),
		Payments: docstore.NewPaymentRepository(db),
		Access:   docstore.NewAccessRepository(db, hub, logger),
	}
	catalog := service.NewCatalogService(stores.Videos)
	require.NoError(t, catalog.Seed(ctx, domain.DefaultCatalog()))

	identity := service.NewIdentityService("test-secret")
	access := service.NewAccessService(stores.Access, hub, logger)
	cfg := &config.Config{
		Paystack:    config.PaystackConfig{PublicKey: "pk_test_123", SecretKey: "sk_never_exposed"},
		CORSOrigins: []string{"http://localhost:5173"},
	}

	router := NewRouter(Deps{
		Config:    cfg,
		Log:       &logger,
		Identity:  identity,
		Users:     service.NewUserService(stores.Users),
		Dashboard: service.NewDashboardService(stores, access, logger),
		Catalog:   catalog,
		Access:    access,
		Payments:  service.NewPaymentService(gw, stores, logger),
		Stats:     service.NewStatsService(stores),
		Checks: map[string]handler.Check{
			"store": func(context.Context) error { return db.Ping() },
		},
	})
	t.Cleanup(router.Close)
	return &testEnv{router: router, identity: identity}
}

func (e *testEnv) token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := e.identity.IssueToken(domain.IdentityClaims{Sub: sub, Email: sub + "@example.com", Name: "Ama Mensah", Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthAndConfig(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))

	rr := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Len(t, body, 2)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)

	rr = env.do(t, http.MethodGet, "/api/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["store"])

	rr = env.do(t, http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"paystackPublicKey": "pk_test_123"}, decode(t, rr))
	assert.NotContains(t, rr.Body.String(), "sk_never_exposed")

	rr = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCatalogHidesMediaURL(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))

	rr := env.do(t, http.MethodGet, "/api/videos", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), videoID)
	assert.NotContains(t, rr.Body.String(), "dropbox")

	rr = env.do(t, http.MethodGet, "/api/videos/"+videoID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 10000, decode(t, rr)["price"])

	rr = env.do(t, http.MethodGet, "/api/videos/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVerifyPayment(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))

	rr := env.do(t, http.MethodPost, "/api/verify-payment", "", map[string]string{"reference": "ref_abc123"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{
		"success": true, "message": "Payment verified successfully",
		"reference": "ref_abc123", "amount": float64(10000), "currency": "GHS",
	}, decode(t, rr))

	rr = env.do(t, http.MethodPost, "/api/verify-payment", "", map[string]string{"reference": "fail_1"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]any{"success": false, "message": "Payment was not successful", "reference": "fail_1"}, decode(t, rr))

	rr = env.do(t, http.MethodPost, "/api/verify-payment", "", map[string]string{"reference": "missing_1"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]any{"success": false, "message": "Payment verification failed"}, decode(t, rr))

	rr = env.do(t, http.MethodPost, "/api/verify-payment", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "reference is required", decode(t, rr)["message"])
}

func TestVerifyPaymentNotConfigured(t *testing.T) {
	env := newTestEnv(t, payment.NewPaystackGateway("", ""))

	rr := env.do(t, http.MethodPost, "/api/verify-payment", "", map[string]string{"reference": "ref_abc123"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, map[string]any{"success": false, "message": "Payment verification not configured"}, decode(t, rr))
}

func TestPurchaseFlow(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))
	tok := env.token(t, "u1", "")

	rr := env.do(t, http.MethodGet, "/api/me", tok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/session", tok, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Ama", decode(t, rr)["firstName"])
	rr = env.do(t, http.MethodPost, "/api/session", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/videos/"+videoID+"/stream", tok, nil)
	require.Equal(t, http.StatusPaymentRequired, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/videos/"+videoID+"/access", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decode(t, rr)["hasAccess"])

	rr = env.do(t, http.MethodPost, "/api/videos/"+videoID+"/purchase", tok, map[string]string{"reference": "ref_abc123"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	res := decode(t, rr)
	assert.Equal(t, "successful", res["payment"].(map[string]any)["status"])
	assert.Equal(t, true, res["access"].(map[string]any)["isActive"])

	rr = env.do(t, http.MethodGet, "/api/videos/"+videoID+"/stream", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stream := decode(t, rr)
	assert.Contains(t, stream["videoUrl"], "dropbox")
	assert.True(t, strings.HasPrefix(stream["remaining"].(string), "23h"))

	rr = env.do(t, http.MethodPost, "/api/videos/"+videoID+"/purchase", tok, map[string]string{"reference": "ref_abc123"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "payment reference already used", decode(t, rr)["error"])

	rr = env.do(t, http.MethodGet, "/api/me", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)
	assert.EqualValues(t, 10000, me["totalSpent"])
	assert.EqualValues(t, 1, me["videosWatched"])

	rr = env.do(t, http.MethodGet, "/api/me/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decode(t, rr)
	assert.Len(t, dash["payments"], 1)
	assert.Len(t, dash["activeAccess"], 1)
	assert.Empty(t, dash["warnings"])
}

func TestProtectedRoutes(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))

	rr := env.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/videos/"+videoID+"/purchase", "", map[string]string{"reference": "r"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/admin/stats", env.token(t, "u1", ""), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/admin/stats", env.token(t, "root", "admin"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decode(t, rr)["payments"])
}

func TestLiveAccessWebSocket(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	tok := env.token(t, "u1", "")
	rr := env.do(t, http.MethodPost, "/api/session", tok, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/videos/" + videoID + "/access/live?token=" + tok
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var snap domain.AccessSnapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.False(t, snap.HasAccess)

	rr = env.do(t, http.MethodPost, "/api/videos/"+videoID+"/purchase", tok, map[string]string{"reference": "ref_live"})
	require.Equal(t, http.StatusCreated, rr.Code)

	require.NoError(t, conn.ReadJSON(&snap))
	assert.True(t, snap.HasAccess)
	require.NotNil(t, snap.Access)
	assert.Equal(t, videoID, snap.VideoID)
}

func TestLiveAccessRejectsBadToken(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))

	rr := env.do(t, http.MethodGet, "/api/videos/"+videoID+"/access/live", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/videos/"+videoID+"/access/live?token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionAcceptsChunkedBody(t *testing.T) {
	env := newTestEnv(t, payment.NewMockGateway(10000, "GHS"))
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	// An opaque reader has no known length, so the client sends it chunked.
	body := io.NopCloser(strings.NewReader(`{"firstName":"Kwame","lastName":"Boateng"}`))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/session", body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, "u9", ""))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user domain.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "Kwame", user.FirstName)
	assert.Equal(t, "Boateng", user.LastName)
}
