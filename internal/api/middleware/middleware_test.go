package middleware_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teocoin/settlement-engine/internal/api/middleware"
	"github.com/teocoin/settlement-engine/internal/logger"
	"github.com/teocoin/settlement-engine/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, subject string, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("auth_subject"))
	})
	router.GET("/protected", handlers...)
	return router
}

func TestNewAuthenticator(t *testing.T) {
	_, err := middleware.NewAuthenticator(middleware.AuthConfig{})
	assert.Error(t, err)

	_, err = middleware.NewAuthenticator(middleware.AuthConfig{JWTPublicKey: "not a pem"})
	assert.Error(t, err)

	_, err = middleware.NewAuthenticator(middleware.AuthConfig{APIKeys: []string{"k1"}})
	assert.NoError(t, err)
}

func TestAuth(t *testing.T) {
	key, publicPEM := generateKey(t)
	otherKey, _ := generateKey(t)

	auth, err := middleware.NewAuthenticator(middleware.AuthConfig{JWTPublicKey: publicPEM, APIKeys: []string{"", "service-key"}})
	require.NoError(t, err)
	router := newProtectedRouter(middleware.Auth(auth))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"api key", "ApiKey service-key", http.StatusOK, ""},
		{"jwt", "Bearer " + signToken(t, key, "web-app", time.Now().Add(time.Hour)), http.StatusOK, "web-app"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"malformed header", "ApiKey", http.StatusUnauthorized, ""},
		{"unknown scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"wrong api key", "ApiKey nope", http.StatusUnauthorized, ""},
		{"expired jwt", "Bearer " + signToken(t, key, "web-app", time.Now().Add(-time.Minute)), http.StatusUnauthorized, ""},
		{"foreign signer", "Bearer " + signToken(t, otherKey, "web-app", time.Now().Add(time.Hour)), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "ERR_UNAUTHORIZED")
			}
		})
	}
}

func TestAuth_HMACRejected(t *testing.T) {
	_, publicPEM := generateKey(t)
	auth, err := middleware.NewAuthenticator(middleware.AuthConfig{JWTPublicKey: publicPEM})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte(publicPEM))
	require.NoError(t, err)

	result := auth.Authenticate("Bearer " + token)
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
}

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRedisRateLimiter(ctrl)
	router := newProtectedRouter(middleware.RateLimit(limiter, middleware.RateLimitConfig{RequestsPerMinute: 60, Burst: 5}))

	expectedLimit := redis_rate.Limit{Rate: 60, Burst: 5, Period: time.Minute}
	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed", func(t *testing.T) {
		limiter.EXPECT().Allow(gomock.Any(), "teo:ratelimit:10.0.0.1", expectedLimit).
			Return(&redis_rate.Result{Allowed: 1, Remaining: 4}, nil)
		rec := serve()
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("limited", func(t *testing.T) {
		limiter.EXPECT().Allow(gomock.Any(), gomock.Any(), expectedLimit).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 2 * time.Second}, nil)
		rec := serve()
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
	})

	t.Run("redis down fails open", func(t *testing.T) {
		limiter.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
				return nil, errors.New("connection refused")
			})
		rec := serve()
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INTERNAL")
}
