package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	tc, ok := v.(*tokenClaims)
	if !ok {
		return fmt.Errorf("unsupported claims type %T", v)
	}
	if s, ok := t.data["sub"].(string); ok {
		tc.Sub = s
	}
	if s, ok := t.data["email"].(string); ok {
		tc.Email = s
	}
	if s, ok := t.data["given_name"].(string); ok {
		tc.GivenName = s
	}
	if s, ok := t.data["family_name"].(string); ok {
		tc.FamilyName = s
	}
	return nil
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken":
		return &fakeToken{data: map[string]interface{}{
			"sub": "ext-001", "email": "a@example.com", "given_name": "Ada", "family_name": "L",
		}}, nil
	case "nosub":
		return &fakeToken{data: map[string]interface{}{"email": "x@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestResolver_NoCredentials(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	ident, err := r.Resolve(context.Background(), "", "")
	require.NoError(t, err)
	require.Equal(t, TierAnonymous, ident.Tier)
}

func TestResolver_BearerToken(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	ident, err := r.Resolve(context.Background(), "Bearer goodtoken", "")
	require.NoError(t, err)
	require.Equal(t, TierUser, ident.Tier)
	require.Equal(t, "ext-001", ident.Subject)
	require.Equal(t, "a@example.com", ident.Claims.Email)
	require.Equal(t, "Ada", ident.Claims.FirstName)
	require.Equal(t, "L", ident.Claims.LastName)
}

func TestResolver_InvalidToken(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	_, err := r.Resolve(context.Background(), "Bearer badtoken", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_MalformedHeader(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	_, err := r.Resolve(context.Background(), "NotBearer", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_TokenWithoutSubject(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	_, err := r.Resolve(context.Background(), "Bearer nosub", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_AdminKey(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	ident, err := r.Resolve(context.Background(), "", "secret")
	require.NoError(t, err)
	require.Equal(t, TierAdmin, ident.Tier)
}

func TestResolver_WrongAdminKey(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	_, err := r.Resolve(context.Background(), "", "wrong")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_AdminTierDisabled(t *testing.T) {
	// no configured key means the admin tier is unreachable, even with an
	// empty comparison
	r := NewResolver(&fakeVerifier{}, "", nil)
	_, err := r.Resolve(context.Background(), "", "anything")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_AdminPrecedence(t *testing.T) {
	// a valid admin key wins over a simultaneously presented user token
	r := NewResolver(&fakeVerifier{}, "secret", nil)
	ident, err := r.Resolve(context.Background(), "Bearer goodtoken", "secret")
	require.NoError(t, err)
	require.Equal(t, TierAdmin, ident.Tier)
	require.Empty(t, ident.Subject)
}

func TestResolver_NoVerifierConfigured(t *testing.T) {
	r := NewResolver(nil, "secret", nil)
	_, err := r.Resolve(context.Background(), "Bearer goodtoken", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_RevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	deny := NewDenylist(client)

	require.NoError(t, deny.Revoke(context.Background(), "goodtoken", 5*time.Second))

	r := NewResolver(&fakeVerifier{}, "secret", deny)
	_, err = r.Resolve(context.Background(), "Bearer goodtoken", "")
	require.ErrorIs(t, err, ErrUnauthenticated)

	// a different token still verifies... and a bad one still fails cleanly
	_, err = r.Resolve(context.Background(), "Bearer badtoken", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolver_DenylistFailureIsInfra(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	m.Close() // revocation checks now fail

	r := NewResolver(&fakeVerifier{}, "secret", NewDenylist(client))
	_, err = r.Resolve(context.Background(), "Bearer goodtoken", "")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnauthenticated), "an unreachable denylist is an infrastructure failure, not a 401")
}

func TestDenylist_RoundTrip(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	deny := NewDenylist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	revoked, err := deny.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, deny.Revoke(context.Background(), "tok", time.Minute))
	revoked, err = deny.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, revoked)

	// entries expire with the token
	m.FastForward(2 * time.Minute)
	revoked, err = deny.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	require.False(t, revoked)
}
