package cache

// 最近一次巡检得到的危险区列表快照，供地图层等只读消费方轮询。

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"Lifeline/internal/model"
	"Lifeline/storage/redis"
)

const (
	dangerZonesKey = "danger:zones"

	dangerZonesTTL = 24 * time.Hour
)

// StoreDangerZones 整体覆盖危险区快照
func StoreDangerZones(ctx context.Context, zones []model.DangerZone) error {
	body, err := json.Marshal(zones)
	if err != nil {
		return fmt.Errorf("failed to marshal danger zones: %w", err)
	}

	key := redis.Key(dangerZonesKey)
	if err := redis.Client().Set(ctx, key, body, dangerZonesTTL).Err(); err != nil {
		return fmt.Errorf("failed to store danger zones: %w", err)
	}
	return nil
}

// LoadDangerZones 读取最近的危险区快照，缓存缺失时返回空列表
func LoadDangerZones(ctx context.Context) ([]model.DangerZone, error) {
	key := redis.Key(dangerZonesKey)
	raw, err := redis.Client().Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, nil // 缓存未命中不算错误
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load danger zones: %w", err)
	}

	var zones []model.DangerZone
	if err := json.Unmarshal(raw, &zones); err != nil {
		return nil, fmt.Errorf("failed to unmarshal danger zones: %w", err)
	}
	return zones, nil
}
