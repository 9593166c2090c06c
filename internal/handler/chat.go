package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Lifeline/internal/cache"
	"Lifeline/internal/service"
	"Lifeline/pkg/response"
	"Lifeline/storage/redis"
)

// PostMessageRequest 分区聊天发言请求体
type PostMessageRequest struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Body          string `json:"body"`
}

// PostZoneMessage 在分区频道发一条消息
// POST /v1/zones/:zone_id/messages
func PostZoneMessage(ctx context.Context, c *app.RequestContext) {
	zone := c.Param("zone_id")

	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	msg, err := service.Chat().Post(ctx, zone, req.ParticipantID, req.Name, req.Body, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg)
}

// ListZoneMessages 按时间顺序列出分区内最近的消息。
// 刚重启时内存环是空的，这时退回 redis 里的近期快照。
// GET /v1/zones/:zone_id/messages?limit=50
func ListZoneMessages(ctx context.Context, c *app.RequestContext) {
	zone := c.Param("zone_id")
	limit := parseLimit(c, 50)

	messages := service.Chat().History(zone, limit)
	if len(messages) == 0 && redis.Ready() {
		if cached, err := cache.RecentZoneMessages(ctx, zone, limit); err == nil {
			messages = cached
		}
	}

	response.SuccessWithMeta(ctx, c, messages, map[string]interface{}{
		"count": len(messages),
		"zone":  zone,
	})
}

// parseLimit 解析 limit 查询参数，非法值回退默认
func parseLimit(c *app.RequestContext, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
