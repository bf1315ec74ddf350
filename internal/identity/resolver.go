package identity

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/noteshare/noteshare/internal/models"
)

// Resolver turns raw credential material into an Identity. The admin key is
// injected at construction so the resolver carries no hidden global state.
type Resolver struct {
	verifier Verifier
	adminKey string
	denylist *Denylist
}

// NewResolver builds a resolver. verifier may be nil (bearer tokens are then
// rejected), adminKey may be empty (the admin tier is then unreachable), and
// denylist may be nil (no revocation checks).
func NewResolver(verifier Verifier, adminKey string, denylist *Denylist) *Resolver {
	return &Resolver{verifier: verifier, adminKey: adminKey, denylist: denylist}
}

// tokenClaims is the slice of OIDC claims the directory needs for
// provisioning.
type tokenClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Resolve classifies the request from its Authorization header and admin-key
// header. A valid admin key wins over a simultaneously presented bearer
// token; admin routes bypass ownership entirely, so this precedence is
// deliberate. Absent credentials yield TierAnonymous, never an error;
// present-but-invalid credentials yield ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, authHeader, adminHeader string) (Identity, error) {
	if adminHeader != "" {
		if r.adminKey != "" && subtle.ConstantTimeCompare([]byte(adminHeader), []byte(r.adminKey)) == 1 {
			return Identity{Tier: TierAdmin}, nil
		}
		return Identity{}, fmt.Errorf("%w: admin key rejected", ErrUnauthenticated)
	}

	if authHeader == "" {
		return Identity{Tier: TierAnonymous}, nil
	}

	var raw string
	if n, _ := fmt.Sscanf(authHeader, "Bearer %s", &raw); n != 1 {
		return Identity{}, fmt.Errorf("%w: malformed Authorization header", ErrUnauthenticated)
	}

	if r.denylist != nil {
		revoked, err := r.denylist.IsRevoked(ctx, raw)
		if err != nil {
			return Identity{}, fmt.Errorf("revocation check: %w", err)
		}
		if revoked {
			return Identity{}, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}

	if r.verifier == nil {
		return Identity{}, fmt.Errorf("%w: no token verifier configured", ErrUnauthenticated)
	}
	tok, err := r.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	var tc tokenClaims
	if err := tok.Claims(&tc); err != nil {
		return Identity{}, fmt.Errorf("%w: unreadable claims", ErrUnauthenticated)
	}
	if tc.Sub == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return Identity{
		Tier:    TierUser,
		Subject: tc.Sub,
		Claims: models.Claims{
			Email:     tc.Email,
			FirstName: tc.GivenName,
			LastName:  tc.FamilyName,
		},
	}, nil
}
