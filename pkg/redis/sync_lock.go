package redis

import (
	"context"
	"fmt"
	"time"
)

// SyncLocker guards one channel/resource pair so overlapping orchestration
// requests cannot double-run the same sync.
type SyncLocker interface {
	AcquireSyncLock(ctx context.Context, channelID, resource string, ttl time.Duration) (bool, error)
	ReleaseSyncLock(ctx context.Context, channelID, resource string) error
}

func syncLockKey(channelID, resource string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyNamespace, syncLockPrefix, channelID, resource)
}

// AcquireSyncLock takes the lock if free. The TTL bounds how long a crashed
// worker can hold a channel hostage.
func (c *Client) AcquireSyncLock(ctx context.Context, channelID, resource string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := c.store.SetNX(ctx, syncLockKey(channelID, resource), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sync lock: %w", err)
	}
	return ok, nil
}

// ReleaseSyncLock frees the lock early once the sync attempt resolves.
func (c *Client) ReleaseSyncLock(ctx context.Context, channelID, resource string) error {
	if err := c.store.Del(ctx, syncLockKey(channelID, resource)).Err(); err != nil {
		return fmt.Errorf("release sync lock: %w", err)
	}
	return nil
}
