package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"Lifeline/internal/handler"
	"Lifeline/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")
	v1.Use(middleware.GeneralRateLimitMiddleware())

	// 参与者路由
	participants := v1.Group("/participants")
	{
		participants.POST("", handler.RegisterParticipant)
		participants.GET("", handler.ListParticipants)
		participants.GET("/:participant_id", handler.GetParticipant)
	}

	// 平安打卡路由
	v1.POST("/check-ins", handler.SubmitCheckIn)

	// 危险区路由
	dangerZones := v1.Group("/danger-zones")
	{
		dangerZones.GET("", handler.ListDangerZones)
		dangerZones.POST("/sweep", handler.TriggerSweep)
	}

	// 分区频道路由：聊天 + 威胁报告
	zones := v1.Group("/zones/:zone_id")
	{
		zones.GET("/messages", handler.ListZoneMessages)
		zones.POST("/messages", handler.PostZoneMessage)
		zones.GET("/threats", handler.ListZoneThreats)
		zones.POST("/threats", handler.ReportThreat)
	}

	// SOS 路由
	sos := v1.Group("/sos")
	{
		sos.POST("", middleware.SOSRateLimitMiddleware(), handler.RaiseSOS)
		sos.GET("/active", handler.ListActiveSOS)
		sos.POST("/:alert_id/resolve", handler.ResolveSOS)
	}
}
