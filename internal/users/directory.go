// Package users maps external identity subjects to local user records. The
// Directory is the only component that writes persistent user state; all
// writes happen through FindOrCreate.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/noteshare/noteshare/internal/models"
	"github.com/noteshare/noteshare/pkg/metrics"
)

// ErrIdentityProvider wraps a failed claims fetch for a brand-new subject.
// It must surface as a server-side failure, never as an anonymous downgrade.
var ErrIdentityProvider = errors.New("identity provider unavailable")

// ClaimsFetcher returns the profile claims for a subject. It is only invoked
// on the first request for an unseen subject.
type ClaimsFetcher func(ctx context.Context, sub string) (models.Claims, error)

// Directory provides idempotent subject-to-user resolution.
type Directory struct {
	repo Repository
}

func NewDirectory(r Repository) *Directory {
	return &Directory{repo: r}
}

// FindOrCreate returns the local user for sub, provisioning it on first
// sight. The fast path is a read-only lookup, safe on every authenticated
// request. On a miss the fetched claims are inserted; losing the insert race
// against a concurrent first request is recovered by re-reading the winner's
// row, so concurrent calls for one subject always resolve to the same user.
func (d *Directory) FindOrCreate(ctx context.Context, sub string, fetch ClaimsFetcher) (*models.User, error) {
	if sub == "" {
		return nil, fmt.Errorf("empty subject")
	}

	u, err := d.repo.GetBySub(ctx, sub)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup subject %q: %w", sub, err)
	}

	claims, err := fetch(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityProvider, err)
	}

	created, err := d.repo.Insert(ctx, &models.User{
		Sub:       sub,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	})
	if err == nil {
		metrics.UsersProvisioned.Inc()
		return created, nil
	}
	if errors.Is(err, ErrDuplicateSubject) {
		// a concurrent request committed first; its row is authoritative
		metrics.ProvisionConflicts.Inc()
		u, err := d.repo.GetBySub(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("re-read subject %q after conflict: %w", sub, err)
		}
		return u, nil
	}
	return nil, fmt.Errorf("provision subject %q: %w", sub, err)
}
