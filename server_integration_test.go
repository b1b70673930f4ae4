package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pfm/config"
	"pfm/notify"
	"pfm/pkg/logging"
	"pfm/store"
	"pfm/store/gormstore"
	"pfm/store/memory"
)

// performRequest runs one request against r with an optional bearer token.
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8081",
		DataBackend:     "memory",
		JWTSecret:       "test-secret",
		TokenTTL:        24 * time.Hour,
		RefreshTokenTTL: time.Hour,
		PollTimeout:     300 * time.Millisecond,
	}
}

func newTestApp(t *testing.T, st store.Store) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if st == nil {
		st = memory.New()
	}
	app := NewApp(testConfig(), st, notify.NewHub(), nil, logging.Discard())
	app.bcryptCost = bcrypt.MinCost
	return app
}

// registerAndLogin creates username and returns a bearer token for it.
func registerAndLogin(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "pass-" + username}
	resp := performRequest(r, http.MethodPost, "/api/register", jsonBody(t, creds), "")
	require.Equal(t, http.StatusCreated, resp.Code, "register body=%s", resp.Body.String())

	resp = performRequest(r, http.MethodPost, "/api/login", jsonBody(t, creds), "")
	require.Equal(t, http.StatusOK, resp.Code, "login body=%s", resp.Body.String())
	token := decode[map[string]string](t, resp)["token"]
	require.NotEmpty(t, token)
	return token
}

func runFullFlow(t *testing.T, r http.Handler) {
	// 1. Register + login
	token := registerAndLogin(t, r, "user1")

	// 2. Create category
	resp := performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, map[string]string{"name": "Food"}), token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	cat := decode[map[string]string](t, resp)
	require.NotEmpty(t, cat["_id"])
	assert.Equal(t, "Food", cat["name"])

	// 3. Create transaction
	resp = performRequest(r, http.MethodPost, "/api/transactions", jsonBody(t, map[string]any{
		"category": cat["_id"], "amount": 12.5, "type": "expense", "date": "2025-08-01",
	}), token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	tx := decode[map[string]any](t, resp)
	assert.NotEmpty(t, tx["_id"])
	assert.Equal(t, cat["_id"], tx["category"])
	assert.Equal(t, 12.5, tx["amount"])

	// 4. List categories and transactions
	resp = performRequest(r, http.MethodGet, "/api/categories", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = performRequest(r, http.MethodGet, "/api/transactions", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	txs := decode[[]map[string]any](t, resp)
	require.Len(t, txs, 1)
	assert.Equal(t, "Food", txs[0]["category"])

	// 5. Report
	resp = performRequest(r, http.MethodGet, "/api/reports?start_date=2025-08-01&end_date=2025-08-31", nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// 6. Delete transaction then category
	resp = performRequest(r, http.MethodDelete, "/api/transactions/"+tx["_id"].(string), nil, token)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = performRequest(r, http.MethodDelete, "/api/categories/"+cat["_id"], nil, token)
	assert.Equal(t, http.StatusOK, resp.Code)

	// 7. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/api/categories", nil, "")
	assert.Equal(t, http.StatusUnauthorized, unauth.Code)
}

func TestFullFlow(t *testing.T) {
	app := newTestApp(t, nil)
	runFullFlow(t, app.Router())
}

func TestFullFlowPostgres(t *testing.T) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	st, err := gormstore.Open(os.Getenv("DB_DSN"), true)
	require.NoError(t, err)
	defer st.Close()

	app := newTestApp(t, st)
	r := app.Router()
	// usernames are global, so make this run unique
	suffix := time.Now().Format("150405.000000")
	token := registerAndLogin(t, r, "pg-"+suffix)
	resp := performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, map[string]string{"name": "Rent"}), token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, map[string]string{"name": "Rent"}), token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)
	r := app.Router()

	resp := performRequest(r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)

	performRequest(r, http.MethodGet, "/api/categories", nil, "")
	resp = performRequest(r, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `pfm_http_requests_total{method="GET",route="/api/categories",status="401"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, nil)
	resp := performRequest(app.Router(), http.MethodOptions, "/api/categories", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}

func performRaw(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
