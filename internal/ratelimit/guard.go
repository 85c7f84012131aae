package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kasirhq/kasira/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyTenantRequests   = "api:requests:tenant:%s"
	keyReceiptIssueLock = "receipt:issue:%s:%s"

	receiptIssueLockTTL = 10 * time.Second
)

// Guard bundles the per-tenant request limiter and the receipt issue lock.
// Without a Redis client every check passes, so single-node deployments run
// unguarded and rely on database constraints alone.
type Guard struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewGuard(cfg config.Config, client *redis.Client) *Guard {
	if client == nil {
		return &Guard{}
	}
	return &Guard{
		enabled: cfg.RateLimitEnabled,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.RateLimitRate,
		burst:   cfg.RateLimitBurst,
	}
}

// AllowTenant reports whether the tenant may issue another API request.
func (g *Guard) AllowTenant(ctx context.Context, tenantID string) (bool, error) {
	if g == nil || !g.enabled || g.bucket == nil {
		return true, nil
	}
	return g.bucket.Allow(ctx, fmt.Sprintf(keyTenantRequests, strings.TrimSpace(tenantID)), g.rate, g.burst)
}

// TryLockReceiptIssue serializes receipt generation per transaction across
// instances. Returns the release token and whether the lock was acquired.
func (g *Guard) TryLockReceiptIssue(ctx context.Context, tenantID, transactionID string) (string, bool, error) {
	if g == nil || g.locker == nil {
		return "", true, nil
	}
	key := fmt.Sprintf(keyReceiptIssueLock, strings.TrimSpace(tenantID), strings.TrimSpace(transactionID))
	return g.locker.TryLock(ctx, key, receiptIssueLockTTL)
}

func (g *Guard) ReleaseReceiptIssue(ctx context.Context, tenantID, transactionID, token string) error {
	if g == nil || g.locker == nil {
		return nil
	}
	key := fmt.Sprintf(keyReceiptIssueLock, strings.TrimSpace(tenantID), strings.TrimSpace(transactionID))
	return g.locker.Release(ctx, key, token)
}
