package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessions keeps the revocation list for logged-out tokens in Redis so
// every instance rejects a token as soon as one of them revokes it. Entries
// expire together with the token itself.
type RedisSessions struct {
	client *redis.Client
}

// NewRedisSessions creates a session store backed by the provided client.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func revokedKey(token string) string {
	return "revoked:" + token
}

// Revoke records the token as logged out until its own expiry.
func (r *RedisSessions) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired tokens fail verification on their own.
		return nil
	}
	return r.client.SetNX(ctx, revokedKey(token), 1, ttl).Err()
}

// IsRevoked reports whether the token has been logged out.
func (r *RedisSessions) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
