package queue

// Broadcaster 是 service.Broadcaster 的生产实现：
// 核心状态在内存里提交后才走到这里，所有外发都是 fire-and-forget，
// 在各自的 goroutine 里完成，失败只记日志，绝不回滚核心状态。

import (
	"context"
	"time"

	"go.uber.org/zap"

	"Lifeline/config"
	"Lifeline/internal/cache"
	"Lifeline/internal/model"
	"Lifeline/pkg/logger"
	"Lifeline/storage/mq"
	"Lifeline/storage/redis"
)

type Broadcaster struct{}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (b *Broadcaster) ParticipantUpdated(p model.Participant, now time.Time) {
	if !mq.Ready() {
		return
	}
	go func() {
		_ = PublishParticipantUpdate(model.ParticipantUpdateMessage{
			OccurredAt:  now.UTC().Format(time.RFC3339),
			Participant: p,
		})
	}()
}

func (b *Broadcaster) DangerZonesUpdated(zones []model.DangerZone, newMissing []string, sweptAt time.Time) {
	go func() {
		if redis.Ready() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := cache.StoreDangerZones(ctx, zones); err != nil {
				logger.Logger.Warn("Failed to cache danger zone snapshot", zap.Error(err))
			}
			cancel()
		}

		if !mq.Ready() {
			return
		}
		now := time.Now().UTC()
		_ = PublishDangerZoneUpdate(model.DangerZoneUpdateMessage{
			OccurredAt: now.Format(time.RFC3339),
			SweptAt:    sweptAt.UTC().Format(time.RFC3339),
			Zones:      zones,
			NewMissing: newMissing,
		})
	}()
}

func (b *Broadcaster) ChatPosted(msg model.ChatMessage) {
	go func() {
		if redis.Ready() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := cache.PushZoneMessage(ctx, msg, config.Cfg.ZoneChatHistoryLimit); err != nil {
				logger.Logger.Warn("Failed to cache zone chat message",
					zap.String("zone", msg.Zone),
					zap.Error(err),
				)
			}
			cancel()
		}

		if !mq.Ready() {
			return
		}
		_ = PublishChatMessage(model.ChatBroadcastMessage{
			OccurredAt: msg.PostedAt.UTC().Format(time.RFC3339),
			Chat:       msg,
		})
	}()
}

func (b *Broadcaster) ThreatReported(t model.ThreatReport) {
	if !mq.Ready() {
		return
	}
	go func() {
		_ = PublishThreatReport(model.ThreatBroadcastMessage{
			OccurredAt: t.ReportedAt.UTC().Format(time.RFC3339),
			Threat:     t,
		})
	}()
}

func (b *Broadcaster) SOSChanged(a model.SOSAlert) {
	if !mq.Ready() {
		return
	}
	go func() {
		_ = PublishSOSAlert(model.SOSBroadcastMessage{
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
			Alert:      a,
		})
	}()
}
