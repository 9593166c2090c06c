package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"Lifeline/internal/service"
	"Lifeline/pkg/errors"
	"Lifeline/pkg/response"
)

// RegisterParticipantRequest 注册/认领参与者请求
type RegisterParticipantRequest struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
}

// RegisterParticipant 注册参与者（已存在时幂等返回当前快照）
// POST /v1/participants
func RegisterParticipant(ctx context.Context, c *app.RequestContext) {
	var req RegisterParticipantRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	p, err := service.Registry().GetOrCreate(req.ParticipantID, req.Name)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, p)
}

// ListParticipants 按注册顺序列出所有参与者
// GET /v1/participants
func ListParticipants(ctx context.Context, c *app.RequestContext) {
	participants := service.Registry().Snapshot()

	response.SuccessWithMeta(ctx, c, participants, map[string]interface{}{
		"count": len(participants),
	})
}

// GetParticipant 查询单个参与者
// GET /v1/participants/:participant_id
func GetParticipant(ctx context.Context, c *app.RequestContext) {
	participantID := c.Param("participant_id")

	p, ok := service.Registry().Get(participantID)
	if !ok {
		response.Error(ctx, c, errors.ParticipantNotFound)
		return
	}

	response.Success(ctx, c, p)
}
