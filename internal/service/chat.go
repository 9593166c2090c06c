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
	chatService *ChatService
	chatOnce    sync.Once
)

// Chat 返回分区聊天服务单例。
func Chat() *ChatService {
	chatOnce.Do(func() {
		chatService = NewChatService(Registry(), nil, config.Cfg.ZoneChatHistoryLimit)
	})
	return chatService
}

type ChatService struct {
	reg       *registry.Registry
	broadcast Broadcaster
	limit     int

	mu    sync.RWMutex
	zones map[string][]model.ChatMessage
}

func NewChatService(reg *registry.Registry, broadcast Broadcaster, limit int) *ChatService {
	if limit <= 0 {
		limit = 100
	}
	return &ChatService{
		reg:       reg,
		broadcast: broadcast,
		limit:     limit,
		zones:     make(map[string][]model.ChatMessage),
	}
}

func (s *ChatService) sink() Broadcaster {
	if s.broadcast != nil {
		return s.broadcast
	}
	return defaultBroadcaster
}

// Post 在指定分区发一条消息。发言也算「首次接触」，参与者不存在时惰性建档，
// 但不影响其连签和安全状态。
func (s *ChatService) Post(ctx context.Context, zone, participantID, name, body string, now time.Time) (model.ChatMessage, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return model.ChatMessage{}, pkgerrors.ZoneRequired
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return model.ChatMessage{}, pkgerrors.MessageEmpty
	}
	if utf8.RuneCountInString(body) > model.MaxChatBodyLength {
		runes := []rune(body)
		body = string(runes[:model.MaxChatBodyLength])
	}

	p, err := s.reg.GetOrCreate(participantID, name)
	if err != nil {
		return model.ChatMessage{}, err
	}

	msg := model.ChatMessage{
		ID:              nextID("msg"),
		Zone:            zone,
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
		Body:            body,
		PostedAt:        now,
	}

	s.mu.Lock()
	ring := append(s.zones[zone], msg)
	if len(ring) > s.limit {
		ring = ring[len(ring)-s.limit:]
	}
	s.zones[zone] = ring
	s.mu.Unlock()

	metrics.RecordChatMessage(ctx, zone)
	s.sink().ChatPosted(msg)

	return msg, nil
}

// History 返回分区最近的消息，时间正序（最新在尾部）。
// limit <= 0 或超过留存量时返回全部留存。
func (s *ChatService) History(zone string, limit int) []model.ChatMessage {
	zone = strings.TrimSpace(zone)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ring := s.zones[zone]
	if limit > 0 && limit < len(ring) {
		ring = ring[len(ring)-limit:]
	}

	out := make([]model.ChatMessage, len(ring))
	copy(out, ring)
	return out
}
