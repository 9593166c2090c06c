package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Lifeline/internal/model"
	"Lifeline/internal/service"
	"Lifeline/pkg/response"
)

// ReportThreatRequest 威胁报告请求体
type ReportThreatRequest struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Location      *model.Location `json:"location"`
}

// ReportThreat 报告分区内的威胁状况
// POST /v1/zones/:zone_id/threats
func ReportThreat(ctx context.Context, c *app.RequestContext) {
	zone := c.Param("zone_id")

	var req ReportThreatRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	report, err := service.Threat().Report(ctx, zone, req.ParticipantID, req.Name,
		model.ThreatCategory(req.Category), req.Description, req.Location, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, report)
}

// ListZoneThreats 列出分区内的威胁报告
// GET /v1/zones/:zone_id/threats?limit=50
func ListZoneThreats(ctx context.Context, c *app.RequestContext) {
	zone := c.Param("zone_id")
	limit := parseLimit(c, 50)

	threats := service.Threat().ListByZone(zone, limit)

	response.SuccessWithMeta(ctx, c, threats, map[string]interface{}{
		"count": len(threats),
		"zone":  zone,
	})
}
