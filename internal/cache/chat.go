package cache

// 分区聊天的近期消息镜像：LPUSH + LTRIM 定长列表，
// 只作新客户端回放的加速层，事实来源在 ChatService 的内存环里。

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Lifeline/internal/model"
	"Lifeline/storage/redis"
)

const (
	zoneChatPrefix = "zone:chat"

	zoneChatTTL = 72 * time.Hour
)

// PushZoneMessage 把消息推入分区的近期列表并裁剪到 keep 条
func PushZoneMessage(ctx context.Context, msg model.ChatMessage, keep int) error {
	if keep <= 0 {
		keep = 100
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}

	key := redis.Key(zoneChatPrefix, msg.Zone)
	pipe := redis.Client().Pipeline()
	pipe.LPush(ctx, key, body)
	pipe.LTrim(ctx, key, 0, int64(keep-1))
	pipe.Expire(ctx, key, zoneChatTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push zone chat message: %w", err)
	}
	return nil
}

// RecentZoneMessages 读取分区近期消息，时间正序返回
func RecentZoneMessages(ctx context.Context, zone string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	key := redis.Key(zoneChatPrefix, zone)
	raw, err := redis.Client().LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read zone chat messages: %w", err)
	}

	// LPUSH 使列表头是最新一条，翻转成时间正序
	out := make([]model.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
