package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock guards one reconciliation per order id. The key expires on its own
// so a crashed reconciliation cannot wedge an order forever.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{
		Client: client,
		TTL:    verifyLockTTL(),
	}
}

func verifyLockTTL() time.Duration {
	// Default TTL comfortably covers the 10s verify window.
	defaultTTL := 30 * time.Second

	ttlStr := os.Getenv("VERIFY_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultTTL
	}
	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		return defaultTTL
	}
	return time.Duration(ttlSec) * time.Second
}

func key(orderID int64) string {
	return fmt.Sprintf("verify_lock:%d", orderID)
}

// Acquire returns false when another reconciliation already holds the order.
func (l *Lock) Acquire(ctx context.Context, orderID int64) (bool, error) {
	return l.Client.SetNX(ctx, key(orderID), "1", l.TTL).Result()
}

func (l *Lock) Release(ctx context.Context, orderID int64) error {
	return l.Client.Del(ctx, key(orderID)).Err()
}
