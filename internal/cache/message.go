package cache

// worker 侧消息幂等标记：广播是至少一次投递，镜像写入前先 SETNX 占位。

import (
	"context"
	"fmt"
	"time"

	"Lifeline/storage/redis"
)

const (
	messageProcessedPrefix = "message:processed"

	processedTTL = 48 * time.Hour
)

// TryMarkMessageProcessing 尝试原子性地标记消息正在处理（使用 SETNX）。
// 返回 true 表示成功标记（首次处理），false 表示已被标记（重复消息或正在处理）。
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}

	result, err := redis.Client().SetNX(ctx, key, "processing", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return result, nil
}

// UnmarkMessageProcessing 取消消息处理标记（处理失败时调用，允许重试）
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 标记消息已处理（处理成功时调用，延长 TTL）
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessedPrefix, messageID)
	if ttl <= 0 {
		ttl = processedTTL
	}
	return redis.Client().Set(ctx, key, "completed", ttl).Err()
}
