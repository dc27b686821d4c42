package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/flightroutes/config"
	"github.com/Domenick1991/flightroutes/internal/keygen"
	"github.com/Domenick1991/flightroutes/internal/service/flights"
	"github.com/Domenick1991/flightroutes/internal/service/loader"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, cfg config.HTTPConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, closeStore, err := OpenStore(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "flights.db"),
	})
	require.NoError(t, err)
	t.Cleanup(closeStore)

	flightSvc := flights.NewFlightService(store, nil)
	loaderSvc := loader.NewService(store, keygen.New(), nil, nil, 1)
	return NewRouter(cfg, flightSvc, loaderSvc)
}

func TestNewRouter_LoadThenQuery(t *testing.T) {
	router := newTestRouter(t, config.HTTPConfig{Address: ":0"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/loader/query", nil))
	assert.Equal(t, "1", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/loader/load", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Loaded flights for 1 days in ")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/segments?from=JFK&to=CDG", nil))
	require.Equal(t, http.StatusOK, w.Code)

	today := time.Now().Format("2006-01-02")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flights?from=JFK&to=CDG&date="+today, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"airplane_type_id":"B747"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, config.HTTPConfig{Address: ":0"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/segments?from=JFK&to=XXX", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadLimiter(t *testing.T) {
	assert.Nil(t, loadLimiter(0))

	limiter := loadLimiter(2)
	require.NotNil(t, limiter)
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}

