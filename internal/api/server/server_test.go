package server_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/api/middleware"
	"github.com/teocoin/settlement-engine/internal/api/server"
	"github.com/teocoin/settlement-engine/internal/domain"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockAPIExecutor(ctrl)

	srv := server.New(server.Config{Auth: middleware.AuthConfig{APIKeys: []string{"k1"}}}, exec, nil)
	router, err := srv.Router()
	require.NoError(t, err)

	t.Run("health is public", func(t *testing.T) {
		exec.EXPECT().ChainConnected().Return(true)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"healthy"`)
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "teo_sweeper_expired_total")
	})

	t.Run("api requires auth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/1/balance", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api with key", func(t *testing.T) {
		exec.EXPECT().GetBalance(gomock.Any(), int64(1)).Return(&domain.Balance{UserID: 1}, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1/balance", nil)
		req.Header.Set("Authorization", "ApiKey k1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouter_RequiresCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv := server.New(server.Config{}, mocks.NewMockAPIExecutor(ctrl), nil)
	_, err := srv.Router()
	assert.Error(t, err)
}
