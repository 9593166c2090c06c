package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	pkgerrors "Lifeline/pkg/errors"
	"Lifeline/pkg/metrics"
)

var (
	sosService *SOSService
	sosOnce    sync.Once
)

// SOS 返回求救警报服务单例。
func SOS() *SOSService {
	sosOnce.Do(func() {
		sosService = NewSOSService(Registry(), nil)
	})
	return sosService
}

type SOSService struct {
	reg       *registry.Registry
	broadcast Broadcaster

	mu     sync.RWMutex
	alerts map[string]*model.SOSAlert
}

func NewSOSService(reg *registry.Registry, broadcast Broadcaster) *SOSService {
	return &SOSService{
		reg:       reg,
		broadcast: broadcast,
		alerts:    make(map[string]*model.SOSAlert),
	}
}

func (s *SOSService) sink() Broadcaster {
	if s.broadcast != nil {
		return s.broadcast
	}
	return defaultBroadcaster
}

// Raise 发出一条全局求救警报。坐标无效时静默丢弃，附言截断到 300 字。
func (s *SOSService) Raise(ctx context.Context, participantID, name string, loc *model.Location, message string, now time.Time) (model.SOSAlert, error) {
	p, err := s.reg.GetOrCreate(participantID, name)
	if err != nil {
		return model.SOSAlert{}, err
	}

	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > model.MaxSOSMessageLength {
		runes := []rune(message)
		message = string(runes[:model.MaxSOSMessageLength])
	}

	alert := model.SOSAlert{
		ID:              uuid.NewString(),
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
		Location:        sanitizeLocation(loc),
		Message:         message,
		RaisedAt:        now,
		Active:          true,
	}

	s.mu.Lock()
	stored := alert
	s.alerts[alert.ID] = &stored
	s.mu.Unlock()

	metrics.RecordSOSRaised(ctx)
	s.sink().SOSChanged(alert)

	return alert, nil
}

// Resolve 解除警报。重复解除是幂等的；未知 ID 返回 SOSNotFound。
func (s *SOSService) Resolve(ctx context.Context, alertID string, now time.Time) (model.SOSAlert, error) {
	s.mu.Lock()
	alert, ok := s.alerts[strings.TrimSpace(alertID)]
	if !ok {
		s.mu.Unlock()
		return model.SOSAlert{}, pkgerrors.SOSNotFound
	}

	changed := alert.Active
	if changed {
		alert.Active = false
		t := now
		alert.ResolvedAt = &t
	}
	out := *alert
	s.mu.Unlock()

	if changed {
		s.sink().SOSChanged(out)
	}

	return out, nil
}

// Active 返回当前仍活跃的警报，最新的在前。
func (s *SOSService) Active() []model.SOSAlert {
	s.mu.RLock()
	out := make([]model.SOSAlert, 0)
	for _, a := range s.alerts {
		if a.Active {
			out = append(out, *a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RaisedAt.Equal(out[j].RaisedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RaisedAt.After(out[j].RaisedAt)
	})
	return out
}
