package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/noteshare/noteshare/internal/identity"
	"github.com/stretchr/testify/require"
)

// withIdentity injects a resolved identity so each test gets its own
// limiter bucket (the in-memory store is package-global).
func withIdentity(ident identity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, ident)
		c.Next()
	}
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(withIdentity(identity.Identity{Tier: identity.TierUser, Subject: "rl-under"}))
	r.Use(RateLimit(10, 2)) // generous rate
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(withIdentity(identity.Identity{Tier: identity.TierUser, Subject: "rl-block"}))
	// very low rate to force rejections
	r.Use(RateLimit(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	// immediate second request -> should be rate-limited
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)

	// wait long enough to replenish one token
	time.Sleep(2100 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest("GET", "/limited", nil))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimit_KeysBySubject(t *testing.T) {
	newRouter := func(sub string) *gin.Engine {
		r := gin.New()
		r.Use(withIdentity(identity.Identity{Tier: identity.TierUser, Subject: sub}))
		r.Use(RateLimit(0.5, 1))
		r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
		return r
	}
	a := newRouter("rl-key-a")
	b := newRouter("rl-key-b")

	// exhaust subject a
	w := httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest("GET", "/u", nil))
	require.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest("GET", "/u", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// subject b has its own bucket
	w = httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest("GET", "/u", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
