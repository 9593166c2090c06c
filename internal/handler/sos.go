package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Lifeline/internal/model"
	"Lifeline/internal/service"
	"Lifeline/pkg/response"
)

// RaiseSOSRequest SOS 触发请求体
type RaiseSOSRequest struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Message       string          `json:"message"`
	Location      *model.Location `json:"location"`
}

// RaiseSOS 触发一条 SOS 警报
// POST /v1/sos
func RaiseSOS(ctx context.Context, c *app.RequestContext) {
	var req RaiseSOSRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	alert, err := service.SOS().Raise(ctx, req.ParticipantID, req.Name, req.Location, req.Message, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alert)
}

// ListActiveSOS 列出未解除的 SOS 警报，新的在前
// GET /v1/sos/active
func ListActiveSOS(ctx context.Context, c *app.RequestContext) {
	alerts := service.SOS().Active()

	response.SuccessWithMeta(ctx, c, alerts, map[string]interface{}{
		"count": len(alerts),
	})
}

// ResolveSOS 解除一条 SOS 警报（重复解除幂等）
// POST /v1/sos/:alert_id/resolve
func ResolveSOS(ctx context.Context, c *app.RequestContext) {
	alertID := c.Param("alert_id")

	alert, err := service.SOS().Resolve(ctx, alertID, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, alert)
}
