package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockTTL = 30 * time.Second

// DownloadLock serialises concurrent download attempts for the same user and
// design. The TTL bounds a lock leaked by a crashed process.
// Key format: download:<user_id>:<design_id>
type DownloadLock struct {
	client *redis.Client
}

// NewDownloadLock creates a DownloadLock wrapping the given Redis client.
func NewDownloadLock(client *redis.Client) *DownloadLock {
	return &DownloadLock{client: client}
}

// Acquire claims the lock. It reports false when another attempt for the same
// pair is already in flight.
func (l *DownloadLock) Acquire(ctx context.Context, userID, designID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(userID, designID), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire download lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock so the pair may download again. A failed delete is
// not fatal: the TTL reclaims the key.
func (l *DownloadLock) Release(ctx context.Context, userID, designID string) {
	_ = l.client.Del(ctx, l.key(userID, designID)).Err()
}

func (l *DownloadLock) key(userID, designID string) string {
	return fmt.Sprintf("download:%s:%s", userID, designID)
}
