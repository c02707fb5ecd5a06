package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/findash/findash-server/cmd/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *APIServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Transaction{}))

	return NewApiServer(":0", db)
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest("GET", "/api/no-such-route", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Route not found", body["message"])
}

func TestHealthCheck(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest("GET", "/api/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesShortCircuitWithoutToken(t *testing.T) {
	router := newTestServer(t).Router()

	paths := []string{
		"/api/transactions",
		"/api/transactions/stats",
		"/api/transactions/chart-data",
		"/api/transactions/recent",
	}
	for _, path := range paths {
		req := httptest.NewRequest("GET", path, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, path)
	}
}
