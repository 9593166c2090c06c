package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"Lifeline/config"
	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	pkgerrors "Lifeline/pkg/errors"
	"Lifeline/pkg/metrics"
)

var (
	threatService *ThreatService
	threatOnce    sync.Once
)

// Threat 返回威胁报告服务单例。
func Threat() *ThreatService {
	threatOnce.Do(func() {
		threatService = NewThreatService(Registry(), nil, config.Cfg.ZoneThreatLimit)
	})
	return threatService
}

type ThreatService struct {
	reg       *registry.Registry
	broadcast Broadcaster
	limit     int

	mu    sync.RWMutex
	zones map[string][]model.ThreatReport
}

func NewThreatService(reg *registry.Registry, broadcast Broadcaster, limit int) *ThreatService {
	if limit <= 0 {
		limit = 200
	}
	return &ThreatService{
		reg:       reg,
		broadcast: broadcast,
		limit:     limit,
		zones:     make(map[string][]model.ThreatReport),
	}
}

func (s *ThreatService) sink() Broadcaster {
	if s.broadcast != nil {
		return s.broadcast
	}
	return defaultBroadcaster
}

// Report 上报一条分区威胁。类别必须在固定集合内，描述必填并截断到 500 字。
func (s *ThreatService) Report(ctx context.Context, zone, reporterID, name string, category model.ThreatCategory, description string, loc *model.Location, now time.Time) (model.ThreatReport, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return model.ThreatReport{}, pkgerrors.ZoneRequired
	}

	if !model.ValidThreatCategories[category] {
		return model.ThreatReport{}, pkgerrors.ThreatCategoryInvalid
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return model.ThreatReport{}, pkgerrors.ThreatDescriptionEmpty
	}
	if utf8.RuneCountInString(description) > model.MaxThreatDescriptionLength {
		runes := []rune(description)
		description = string(runes[:model.MaxThreatDescriptionLength])
	}

	p, err := s.reg.GetOrCreate(reporterID, name)
	if err != nil {
		return model.ThreatReport{}, err
	}

	report := model.ThreatReport{
		ID:           nextID("thr"),
		Zone:         zone,
		ReporterID:   p.ID,
		ReporterName: p.Name,
		Category:     category,
		Description:  description,
		Location:     sanitizeLocation(loc),
		ReportedAt:   now,
	}

	s.mu.Lock()
	list := append(s.zones[zone], report)
	if len(list) > s.limit {
		list = list[len(list)-s.limit:]
	}
	s.zones[zone] = list
	s.mu.Unlock()

	metrics.RecordThreatReport(ctx, string(category))
	s.sink().ThreatReported(report)

	return report, nil
}

// ListByZone 返回分区内最近的威胁报告，时间正序。
func (s *ThreatService) ListByZone(zone string, limit int) []model.ThreatReport {
	zone = strings.TrimSpace(zone)

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.zones[zone]
	if limit > 0 && limit < len(list) {
		list = list[len(list)-limit:]
	}

	out := make([]model.ThreatReport, len(list))
	copy(out, list)
	return out
}
