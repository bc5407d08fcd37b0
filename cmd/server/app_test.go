package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/vocab-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			URL:          "postgres://localhost:5432/vocab",
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		Review: config.ReviewConfig{MaxSessionLimit: 50, UpdateRetries: 3, RetryBaseDelay: 20 * time.Millisecond},
		Sweeper: config.SweeperConfig{
			Interval:    time.Minute,
			IdleTimeout: 30 * time.Minute,
			BatchSize:   100,
		},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) *application {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app, err := newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), db)
	require.NoError(t, err)
	return app
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	t.Run("sweeper disabled", func(t *testing.T) {
		t.Parallel()
		app := newTestApplication(t, testConfig())
		assert.NotNil(t, app.reviewService)
		assert.Nil(t, app.sweeper)
	})

	t.Run("sweeper enabled", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Sweeper.Enabled = true
		app := newTestApplication(t, cfg)
		assert.NotNil(t, app.sweeper)
	})

	t.Run("invalid sweeper interval", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Sweeper.Enabled = true
		cfg.Sweeper.Interval = 0

		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		_, err = newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), db)
		assert.ErrorContains(t, err, "failed to create session sweeper")
	})
}

func TestSetupRouter(t *testing.T) {
	t.Parallel()

	router := newTestApplication(t, testConfig()).setupRouter()

	t.Run("health", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("api requires user", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cards", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	})
}

func TestSplitMigrateArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantCmd   string
		wantRest  []string
		wantMatch bool
	}{
		{"serve", []string{"--port", "9000"}, "", []string{"--port", "9000"}, false},
		{"no args", nil, "", nil, false},
		{"bare migrate", []string{"migrate"}, migrateStatus, nil, true},
		{"migrate up with flags", []string{"migrate", "up", "--config", "c.yaml"}, migrateUp, []string{"--config", "c.yaml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cmd, rest, ok := splitMigrateArgs(tt.args)
			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestHandleMigrations_UnknownCommand(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = handleMigrations(context.Background(), db, "sideways", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.ErrorContains(t, err, `unknown migration command "sideways"`)
}
