package cache

import (
	"context"
	"log/slog"
	"strconv"
)

// SafeInvalidatePattern invalidates a pattern and only logs failures.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and only logs failures.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

func InvalidateUser(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.Users, userID)
}

// InvalidateIntake drops the average intake of one diet.
func InvalidateIntake(ctx context.Context, cm *CacheManager, dietID uint) {
	SafeDelete(ctx, cm.Intake, strconv.FormatUint(uint64(dietID), 10))
}

// InvalidateAllIntake is used when a food changes, since any diet may
// reference it.
func InvalidateAllIntake(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Intake, "*")
}
