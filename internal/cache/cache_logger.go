package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete deletes cache keys, logging failures instead of returning
// them: a broken cache must never fail a repository write.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSpace drops the cached lookups for a space after a
// membership or assignment write.
func InvalidateSpace(ctx context.Context, cm *CacheManager, spaceID uint, joinCode string) {
	SafeDelete(ctx, cm.Space,
		fmt.Sprintf("id:%d", spaceID),
		fmt.Sprintf("code:%s", joinCode))
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("code:%s", joinCode))
}

// InvalidateAccount drops the cached lookups for an account.
func InvalidateAccount(ctx context.Context, cm *CacheManager, accountID uint, subjectID string) {
	SafeDelete(ctx, cm.Account,
		fmt.Sprintf("id:%d", accountID),
		fmt.Sprintf("subject:%s", subjectID))
}
