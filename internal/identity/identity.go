// Package identity classifies each inbound request into exactly one trust
// tier: anonymous visitor, authenticated user, or API-key admin.
package identity

import (
	"context"
	"errors"

	"github.com/noteshare/noteshare/internal/models"
)

// ErrUnauthenticated is returned when a credential is presented but cannot
// be accepted (bad bearer token, revoked token, wrong admin key). Maps to
// HTTP 401 at the boundary.
var ErrUnauthenticated = errors.New("unauthenticated")

// Tier is the trust level of a request. Tiers are mutually exclusive per
// request; Admin takes precedence when both credentials are presented.
type Tier int

const (
	TierAnonymous Tier = iota
	TierUser
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierUser:
		return "user"
	case TierAdmin:
		return "admin"
	}
	return "anonymous"
}

// Identity is the resolved caller. Subject and Claims are populated only for
// TierUser; both come from the already-verified token, never from unverified
// request material.
type Identity struct {
	Tier    Tier
	Subject string
	Claims  models.Claims
}

// Token is the minimal interface of a verified token that can expose claims.
// Satisfied by *oidc.IDToken and by test fakes.
type Token interface {
	Claims(v interface{}) error
}

// Verifier validates a raw bearer token and returns its verified form.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}
