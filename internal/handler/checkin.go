package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"Lifeline/internal/model"
	"Lifeline/internal/service"
	"Lifeline/pkg/response"
)

// CheckInRequest 打卡请求体
type CheckInRequest struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Location      *model.Location `json:"location"`
	Note          string          `json:"note"`
}

// SubmitCheckIn 提交一次打卡
// POST /v1/check-ins
func SubmitCheckIn(ctx context.Context, c *app.RequestContext) {
	var req CheckInRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	p, err := service.CheckIn().ProcessCheckIn(ctx, service.CheckInInput{
		ID:       req.ParticipantID,
		Name:     req.Name,
		Location: req.Location,
		Note:     req.Note,
	}, time.Now())
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, p)
}
