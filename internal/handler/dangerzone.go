package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Lifeline/internal/cache"
	"Lifeline/internal/schedule"
	"Lifeline/internal/service"
	"Lifeline/pkg/response"
	"Lifeline/storage/redis"
)

// ListDangerZones 列出当前全部危险区。读取前先按当前时间跑一轮巡检，
// 保证结果反映此刻的陈旧判定而不是上一个 tick 的。
// 注册表还是空的（刚重启且镜像库不可用）时，退回 redis 里的上一份快照。
// GET /v1/danger-zones
func ListDangerZones(ctx context.Context, c *app.RequestContext) {
	zones := service.Deriver().ListDangerZones(time.Now())
	if len(zones) == 0 && service.Registry().Len() == 0 && redis.Ready() {
		if cached, err := cache.LoadDangerZones(ctx); err == nil {
			zones = cached
		}
	}

	response.SuccessWithMeta(ctx, c, zones, map[string]interface{}{
		"count": len(zones),
	})
}

// TriggerSweep 手动触发一轮巡检
// POST /v1/danger-zones/sweep
func TriggerSweep(ctx context.Context, c *app.RequestContext) {
	now := time.Now()
	schedule.GetScheduler().RunOnce(now)

	zones := service.Deriver().ListDangerZones(now)
	response.SuccessWithMeta(ctx, c, zones, map[string]interface{}{
		"count":    len(zones),
		"swept_at": now.UTC().Format(time.RFC3339),
	})
}
