package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/feed-system/social-api/internal/auth"
	"github.com/feed-system/social-api/pkg/cache"
	"github.com/feed-system/social-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tokens *auth.TokenManager, revocations *auth.RevocationStore) *gin.Engine {
	r := gin.New()
	r.GET("/me", Authenticate(tokens, revocations, logger.Discard()), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": p.UserID, "email": p.Email})
	})
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newProtectedRouter(tokens, nil)
	token, _, err := tokens.Issue(5, "e@example.com")
	require.NoError(t, err)

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Token required"}`, w.Body.String())

	w = get(r, "Bearer")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "Bearer garbage")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired token"}`, w.Body.String())

	other, _, err := auth.NewTokenManager("other", time.Hour).Issue(5, "e@example.com")
	require.NoError(t, err)
	w = get(r, "Bearer "+other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"email":"e@example.com"}`, w.Body.String())
}

func TestAuthenticate_Revoked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(cache.Options{Addr: mr.Addr(), PoolSize: 5})
	defer client.Close()
	revocations := auth.NewRevocationStore(client)

	tokens := auth.NewTokenManager("secret", time.Hour)
	r := newProtectedRouter(tokens, revocations)
	token, claims, err := tokens.Issue(5, "e@example.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)

	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+token).Code)

	// an unreachable store does not lock everybody out
	fresh, _, err := tokens.Issue(6, "f@example.com")
	require.NoError(t, err)
	mr.Close()
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+fresh).Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput(&buf, "info", "json")

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), `"path":"/ping"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/posts/search/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/posts/search/1", "/posts/search/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/posts/search/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(0, 0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
