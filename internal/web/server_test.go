package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elys-network/curved/internal/curves"
	"github.com/elys-network/curved/internal/registry"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()

	reg := registry.New()
	linear, err := curves.NewLinear("linear")
	require.NoError(t, err)
	_, err = reg.AddCurve(linear)
	require.NoError(t, err)

	return NewWebServer("0", reg)
}

func doGet(t *testing.T, ws *WebServer, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthEndpoint(t *testing.T) {
	ws := newTestServer(t)

	rec, body := doGet(t, ws, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", body["status"])

	engine, ok := body["engine_status"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(1), engine["registered_curves"])
	require.Equal(t, false, engine["database_healthy"])
}

func TestListCurves(t *testing.T) {
	ws := newTestServer(t)

	rec, body := doGet(t, ws, "/api/curves")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(1), body["count"])

	entries, ok := body["curves"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	require.Equal(t, float64(1), entry["id"])
	require.Equal(t, "linear", entry["name"])
}

func TestGetCurveByID(t *testing.T) {
	ws := newTestServer(t)

	rec, body := doGet(t, ws, "/api/curves/1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "linear", body["name"])

	rec, body = doGet(t, ws, "/api/curves/42")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, true, body["error"])
}

func TestPreviewDepositQuote(t *testing.T) {
	ws := newTestServer(t)

	rec, body := doGet(t, ws, "/api/curves/1/preview/deposit?assets=100&total_assets=1000&total_shares=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "preview_deposit", body["operation"])
	require.Equal(t, "100.000000000000000000", body["result"])
	require.Equal(t, "100.000000000000000000", body["assets"])
	require.Equal(t, "1000.000000000000000000", body["total_assets"])
}

func TestPriceEndpoint(t *testing.T) {
	ws := newTestServer(t)

	rec, body := doGet(t, ws, "/api/curves/1/price?total_assets=2000&total_shares=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2.000000000000000000", body["price"])
}

func TestQuoteParameterValidation(t *testing.T) {
	ws := newTestServer(t)

	rec, body := doGet(t, ws, "/api/curves/1/preview/deposit?total_assets=1000&total_shares=1000")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, body["message"], "Missing query parameter: assets")

	rec, _ = doGet(t, ws, "/api/curves/1/preview/deposit?assets=not-a-number&total_assets=1000&total_shares=1000")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doGet(t, ws, "/api/curves/abc/preview/deposit?assets=1&total_assets=0&total_shares=0")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteEngineErrors(t *testing.T) {
	ws := newTestServer(t)

	// Redeeming more shares than exist is a client error, not a crash.
	rec, body := doGet(t, ws, "/api/curves/1/preview/redeem?shares=500&total_assets=100&total_shares=100")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, true, body["error"])

	rec, _ = doGet(t, ws, "/api/curves/99/preview/deposit?assets=1&total_assets=0&total_shares=0")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSHeadersPresent(t *testing.T) {
	ws := newTestServer(t)

	rec, _ := doGet(t, ws, "/api/curves")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
