package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"Lifeline/internal/daykey"
	"Lifeline/internal/model"
	"Lifeline/internal/registry"
	"Lifeline/pkg/metrics"
)

var (
	checkInService *CheckInService
	checkInOnce    sync.Once
)

// CheckIn 返回打卡服务单例。
func CheckIn() *CheckInService {
	checkInOnce.Do(func() {
		checkInService = NewCheckInService(Registry(), nil)
	})
	return checkInService
}

type CheckInService struct {
	reg       *registry.Registry
	broadcast Broadcaster
}

// NewCheckInService broadcast 传 nil 时使用进程级广播实现。
func NewCheckInService(reg *registry.Registry, broadcast Broadcaster) *CheckInService {
	return &CheckInService{reg: reg, broadcast: broadcast}
}

func (s *CheckInService) sink() Broadcaster {
	if s.broadcast != nil {
		return s.broadcast
	}
	return defaultBroadcaster
}

// CheckInInput 一次打卡请求。Location 为调用方原样转入，这里负责校验。
type CheckInInput struct {
	ID       string
	Name     string
	Location *model.Location
	Note     string
}

// ProcessCheckIn 应用一次打卡事件。评估时间 now 由调用方显式传入，核心不读墙钟。
//
// 连签迁移以本次调用前的 lastCheckInDay 为准：
// 同日重复打卡不动连签；昨天打过则 +1（下限 1）；其余情况（包括从未打卡、
// 断签超过一天）一律重置为 1。打卡无条件清掉 missing 状态和危险区记录。
func (s *CheckInService) ProcessCheckIn(ctx context.Context, in CheckInInput, now time.Time) (model.Participant, error) {
	today := daykey.Key(now)
	yesterday := daykey.YesterdayKey(now)

	loc := sanitizeLocation(in.Location)
	note := normalizeNote(in.Note)

	p, err := s.reg.Mutate(in.ID, in.Name, func(p *model.Participant) {
		if loc != nil {
			l := *loc
			p.LastKnownLocation = &l
		}

		// 历史快照记录的是本次随附的坐标，没带坐标就是空，
		// 不回填参与者已有的 lastKnownLocation
		var entryLoc *model.Location
		if loc != nil {
			l := *loc
			entryLoc = &l
		}
		upsertHistory(p, model.CheckInEntry{
			DayKey:   today,
			At:       now,
			Location: entryLoc,
			Note:     note,
		})

		// 此时 LastCheckInDay 仍是上一次打卡的日键
		switch p.LastCheckInDay {
		case today:
			// 同日幂等，连签不变
		case yesterday:
			p.Streak++
			if p.Streak < 1 {
				p.Streak = 1
			}
		default:
			p.Streak = 1
		}

		t := now
		p.LastCheckInAt = &t
		p.LastCheckInDay = today
		p.Status = model.StatusOK
		p.MissingSince = nil
		p.DangerZone = nil
	})
	if err != nil {
		return model.Participant{}, err
	}

	metrics.RecordCheckIn(ctx)
	s.sink().ParticipantUpdated(p, now)

	return p, nil
}

// upsertHistory 以日键为主键 upsert：同日条目原位替换（保持原插入位置），
// 新日追加到尾部；随后按插入顺序裁剪到最近 21 条，最旧的先丢。
// 裁剪依据是插入顺序而非日键顺序，补签乱序插入时两者会分叉，这里保留插入序语义。
func upsertHistory(p *model.Participant, entry model.CheckInEntry) {
	for i := range p.History {
		if p.History[i].DayKey == entry.DayKey {
			p.History[i] = entry
			return
		}
	}

	p.History = append(p.History, entry)
	if len(p.History) > model.MaxHistoryEntries {
		p.History = p.History[len(p.History)-model.MaxHistoryEntries:]
	}
}

func normalizeNote(note string) string {
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > model.MaxNoteLength {
		runes := []rune(note)
		note = string(runes[:model.MaxNoteLength])
	}
	return note
}
