package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/noteshare/noteshare/internal/identity"
	"github.com/noteshare/noteshare/internal/oidc"
	"github.com/stretchr/testify/require"

	"github.com/golang-jwt/jwt/v5"
)

func devToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "email": sub + "@example.com", "given_name": "Test", "family_name": "User",
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func identityRouter(res *identity.Resolver) (*gin.Engine, *identity.Identity) {
	g := gin.New()
	var seen identity.Identity
	g.GET("/", Identity(res), func(c *gin.Context) {
		seen = IdentityFrom(c)
		c.Status(http.StatusOK)
	})
	return g, &seen
}

func TestIdentityMiddleware_Anonymous(t *testing.T) {
	res := identity.NewResolver(oidc.NewInsecureVerifier(), "secret", nil)
	g, seen := identityRouter(res)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code, "anonymous requests pass through")
	require.Equal(t, identity.TierAnonymous, seen.Tier)
}

func TestIdentityMiddleware_User(t *testing.T) {
	res := identity.NewResolver(oidc.NewInsecureVerifier(), "secret", nil)
	g, seen := identityRouter(res)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+devToken(t, "ext-001"))
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, identity.TierUser, seen.Tier)
	require.Equal(t, "ext-001", seen.Subject)
	require.Equal(t, "ext-001@example.com", seen.Claims.Email)
}

func TestIdentityMiddleware_Admin(t *testing.T) {
	res := identity.NewResolver(oidc.NewInsecureVerifier(), "secret", nil)
	g, seen := identityRouter(res)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "secret")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, identity.TierAdmin, seen.Tier)
}

func TestIdentityMiddleware_BadCredentials(t *testing.T) {
	res := identity.NewResolver(oidc.NewInsecureVerifier(), "secret", nil)
	g, _ := identityRouter(res)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "wrong")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

type errVerifier struct{}

func (errVerifier) Verify(ctx context.Context, raw string) (identity.Token, error) {
	return nil, fmt.Errorf("provider down")
}

func TestIdentityFrom_Default(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Equal(t, identity.TierAnonymous, IdentityFrom(c).Tier)
}

func TestIdentityMiddleware_VerifierRejection(t *testing.T) {
	res := identity.NewResolver(errVerifier{}, "", nil)
	g, _ := identityRouter(res)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
