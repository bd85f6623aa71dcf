// Package cache holds the same-day plan cache: redis in deployments and an
// in-process map for local runs and tests.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get reports ok=false on a miss; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Close() error
}

// PlanKey is the cache key for a user's plan on an ISO date.
func PlanKey(userID uuid.UUID, date string) string {
	return "plan:" + userID.String() + ":" + date
}
