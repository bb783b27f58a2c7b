package redis_repo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ISessionRedisRepository 登出後的 token 黑名單
type ISessionRedisRepository interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SessionRedisRepo struct {
	client *redis.Client
}

func NewSessionRedisRepo(client *redis.Client) *SessionRedisRepo {
	return &SessionRedisRepo{client: client}
}

func revokedTokenKey(tokenID string) string {
	return prefixKey("session", "revoked", tokenID)
}

// RevokeToken ttl 為 token 剩餘效期，過期後 key 自動消失
func (s *SessionRedisRepo) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedTokenKey(tokenID), 1, ttl).Err()
}

func (s *SessionRedisRepo) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ ISessionRedisRepository = (*SessionRedisRepo)(nil)
