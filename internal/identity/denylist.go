package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "denylist:access:"

// Denylist is a Redis-backed set of revoked bearer tokens. Entries carry a
// TTL matching the token's remaining lifetime, so the set stays small.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(c *redis.Client) *Denylist {
	return &Denylist{client: c}
}

// Revoke marks the token as unusable for ttl.
func (d *Denylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	return d.client.Set(ctx, denylistPrefix+token, "1", ttl).Err()
}

// IsRevoked reports whether the token was revoked.
func (d *Denylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
