package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CommentsPattern matches every cached comment page of a plant.
func CommentsPattern(plantID uuid.UUID) string {
	return fmt.Sprintf("comments:%s:*", plantID)
}

// CommentsPageKey is the key of one cached comment page.
func CommentsPageKey(plantID uuid.UUID, page, pageSize int) string {
	return fmt.Sprintf("comments:%s:page:%d:size:%d", plantID, page, pageSize)
}

// DeletePattern drops every key matching pattern. A nil client is a no-op.
func DeletePattern(ctx context.Context, client *redis.Client, pattern string) {
	if client == nil {
		return
	}
	keys, _ := client.Keys(ctx, pattern).Result()
	if len(keys) > 0 {
		_ = client.Del(ctx, keys...).Err()
	}
}
