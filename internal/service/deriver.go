package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"Lifeline/internal/daykey"
	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	"Lifeline/pkg/metrics"
)

var (
	deriverService *DeriverService
	deriverOnce    sync.Once
)

// Deriver 返回失联派生服务单例。
func Deriver() *DeriverService {
	deriverOnce.Do(func() {
		deriverService = NewDeriverService(Registry(), nil)
	})
	return deriverService
}

type DeriverService struct {
	reg       *registry.Registry
	broadcast Broadcaster
	newZoneID func() string
}

func NewDeriverService(reg *registry.Registry, broadcast Broadcaster) *DeriverService {
	return &DeriverService{
		reg:       reg,
		broadcast: broadcast,
		newZoneID: uuid.NewString,
	}
}

func (s *DeriverService) sink() Broadcaster {
	if s.broadcast != nil {
		return s.broadcast
	}
	return defaultBroadcaster
}

// Sweep 扫描注册表，把断签者迁入 missing。
//
// 迁移条件：lastCheckInDay 相对 now 已陈旧且当前不是 missing。
// 从未打卡者（空日键）判不陈旧，所以 unknown 不会直接进 missing。
// 已是 missing 的参与者跳过：不重建危险区记录，不动 missingSince（幂等）。
// 有最后已知位置才物化危险区记录，每次迁移都是带新 ID 的全新记录；
// 无位置者只标记 missing，危险区保持为空。
// 返回本次新迁入 missing 的参与者 ID。
func (s *DeriverService) Sweep(now time.Time) []string {
	start := time.Now()

	var newMissing []string
	s.reg.Range(func(p *model.Participant) {
		if p.Status == model.StatusMissing {
			return
		}
		if !daykey.IsStale(p.LastCheckInDay, now) {
			return
		}

		since := now
		if p.LastCheckInAt != nil {
			since = *p.LastCheckInAt
		}

		p.Status = model.StatusMissing
		t := since
		p.MissingSince = &t

		if p.LastKnownLocation != nil {
			loc := *p.LastKnownLocation
			p.DangerZone = &model.DangerZone{
				ID:              s.newZoneID(),
				Reason:          model.ReasonStreakBroken,
				ParticipantID:   p.ID,
				ParticipantName: p.Name,
				Location:        &loc,
				LastSeenAt:      since,
			}
		}

		newMissing = append(newMissing, p.ID)
	})

	if len(newMissing) > 0 {
		zones := s.collectZones()
		metrics.RecordMissingTransitions(context.Background(), len(newMissing), len(zones))
		s.sink().DangerZonesUpdated(zones, newMissing, now)
	}
	metrics.RecordSweep(context.Background(), time.Since(start))

	return newMissing
}

// ListDangerZones 先跑一次 Sweep 保证列表与陈旧规则一致，
// 再按注册表插入顺序收集所有非空危险区记录。
func (s *DeriverService) ListDangerZones(now time.Time) []model.DangerZone {
	s.Sweep(now)
	return s.collectZones()
}

func (s *DeriverService) collectZones() []model.DangerZone {
	zones := make([]model.DangerZone, 0)
	s.reg.Range(func(p *model.Participant) {
		if p.DangerZone != nil {
			zones = append(zones, p.DangerZone.Clone())
		}
	})
	return zones
}
