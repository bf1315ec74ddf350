package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/noteshare/noteshare/internal/identity"
	"github.com/noteshare/noteshare/internal/models"
	"github.com/noteshare/noteshare/internal/note"
	"github.com/noteshare/noteshare/internal/note/repository"
	"github.com/noteshare/noteshare/internal/users"
	"github.com/noteshare/noteshare/pkg/metrics"
)

// Decision is the outcome of one access check. On ALLOW the loaded note is
// returned so the handler does not fetch it a second time; User carries the
// resolved local user for authenticated callers. Decisions are never cached
// across requests.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Note    *note.Note
	User    *models.User
}

// Guard decides, per request, whether a caller may perform an operation on a
// note. It is stateless: a pure function over (identity, note snapshot,
// policy table), except that resolving an authenticated caller runs the
// directory's lazy provisioning — Check may insert the caller's user row the
// first time a subject is seen.
type Guard struct {
	notes     repository.Loader
	directory *users.Directory
	policy    Policy
}

func NewGuard(notes repository.Loader, directory *users.Directory) *Guard {
	return &Guard{notes: notes, directory: directory, policy: DefaultPolicy()}
}

// Check evaluates the caller against the target note. A DENY is a regular
// return value; the error return is reserved for infrastructure failure
// (store unreachable, identity provider down) and maps to a 5xx upstream.
func (g *Guard) Check(ctx context.Context, ident identity.Identity, noteID string, op Operation) (Decision, error) {
	dec, err := g.check(ctx, ident, noteID, op)
	if err != nil {
		return dec, err
	}
	outcome := "allow"
	if !dec.Allowed {
		switch dec.Reason {
		case ReasonForbidden:
			outcome = "forbidden"
		case ReasonNotFound:
			outcome = "not_found"
		default:
			outcome = "unauthenticated"
		}
	}
	metrics.AccessDecisions.WithLabelValues(ident.Tier.String(), string(op), outcome).Inc()
	return dec, nil
}

func (g *Guard) check(ctx context.Context, ident identity.Identity, noteID string, op Operation) (Decision, error) {
	n, err := g.notes.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 404 for every tier; even admins have nothing to bypass to
			return Decision{Reason: ReasonNotFound}, nil
		}
		return Decision{}, fmt.Errorf("load note %q: %w", noteID, err)
	}

	if ident.Tier == identity.TierAdmin {
		return Decision{Allowed: true, Note: n}, nil
	}

	var caller *models.User
	callerID := ""
	if ident.Tier == identity.TierUser {
		// lazy provisioning happens here, inside the guard path, so a
		// brand-new user's first mutating request both provisions them and
		// completes in one round trip
		caller, err = g.directory.FindOrCreate(ctx, ident.Subject, claimsFromToken(ident.Claims))
		if err != nil {
			return Decision{}, err
		}
		callerID = caller.ID
	}

	allowed, reason := g.policy.Evaluate(ident.Tier, n, callerID, op)
	if !allowed {
		return Decision{Reason: reason, User: caller}, nil
	}
	return Decision{Allowed: true, Note: n, User: caller}, nil
}

// claimsFromToken adapts the claims already verified on the request token
// into the directory's fetcher shape. Deployments that need fresher profile
// data can swap in a fetcher that queries the identity provider instead.
func claimsFromToken(c models.Claims) users.ClaimsFetcher {
	return func(ctx context.Context, sub string) (models.Claims, error) {
		return c, nil
	}
}
