package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/database/models"
)

// NewTestConfig returns a config usable without any environment
func NewTestConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		LogLevel:           slog.LevelError,
		ApiServicePort:     "8080",
		ApiGrpcPort:        "50052",
		DBDriver:           config.DriverSQLite,
		SQLitePath:         ":memory:",
		JWTSecret:          "test-secret",
		TokenExpiration:    3600,
		ReportCacheTTL:     300,
		AuthRateLimit:      5,
		AuthRateWindow:     60,
		ShiftTotalsMode:    config.ShiftTotalsLast,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		ShutdownTimeout:    5,
	}
}

// NewTestLogger discards everything below error
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// NewTestDB opens an in-memory SQLite database with the full schema
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Employee{}, &models.Sale{}, &models.SaleEmployee{})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// NewTestRedis starts a miniredis server and a client connected to it
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

// PerformRequest sends a JSON request through handler. A non-empty token is sent as a bearer token.
func PerformRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals a recorded response body into dest
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), "body: %s", w.Body.String())
}

// PerformRawRequest serves a prepared request
func PerformRawRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}
