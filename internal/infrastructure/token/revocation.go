package token

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-rbac/pkg/helpers"
)

const revokedKeyPrefix = "auth:revoked:"

type revocation struct {
	RevokedAt time.Time `json:"revoked_at"`
}

// RedisRevocationStore keeps revoked jtis in Redis with a TTL matching the
// remaining usable life of the token.
type RedisRevocationStore struct {
	rdb *redis.Client
}

func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return helpers.RedisSetJSON(ctx, s.rdb, revokedKeyPrefix+jti, revocation{RevokedAt: time.Now().UTC()}, ttl)
}

func (s *RedisRevocationStore) RevokeOnce(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return false, nil
	}
	return helpers.RedisSetNXJSON(ctx, s.rdb, revokedKeyPrefix+jti, revocation{RevokedAt: time.Now().UTC()}, ttl)
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var r revocation
	return helpers.RedisGetJSON(ctx, s.rdb, revokedKeyPrefix+jti, &r)
}

// MemoryRevocationStore is the single-process variant.
type MemoryRevocationStore struct {
	c   *cache.Cache
	now func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{c: cache.New(cache.NoExpiration, 10*time.Minute), now: time.Now}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	s.c.Set(jti, revocation{RevokedAt: s.now().UTC()}, ttl)
	return nil
}

func (s *MemoryRevocationStore) RevokeOnce(_ context.Context, jti string, until time.Time) (bool, error) {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return false, nil
	}
	// Add fails when the jti is already present.
	return s.c.Add(jti, revocation{RevokedAt: s.now().UTC()}, ttl) == nil, nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := s.c.Get(jti)
	return ok, nil
}
