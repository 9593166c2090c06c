package model

import "time"

// ParticipantStatus 参与者安全状态枚举
type ParticipantStatus string

const (
	StatusUnknown ParticipantStatus = "unknown" // 尚未打过卡
	StatusOK      ParticipantStatus = "ok"      // 打卡正常
	StatusMissing ParticipantStatus = "missing" // 断签，疑似失联
)

const (
	// MaxNameLength 显示名上限
	MaxNameLength = 60
	// MaxNoteLength 打卡备注上限
	MaxNoteLength = 180
	// MaxHistoryEntries 打卡历史保留条数，按插入顺序丢弃最旧的
	MaxHistoryEntries = 21
)

// Location 经纬度坐标，仅在两个分量都是有限数时有效
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CheckInEntry 单日打卡记录，每个日键至多一条
type CheckInEntry struct {
	DayKey   string    `json:"day_key"`
	At       time.Time `json:"at"`
	Location *Location `json:"location,omitempty"` // 本次打卡随附的坐标快照，可能为空
	Note     string    `json:"note,omitempty"`
}

// Participant 参与者，进程生命周期内只增不删
type Participant struct {
	ID                string            `json:"id"`   // 调用方自报的不透明标识，创建后不可变
	Name              string            `json:"name"` // 显示名，重复接触时可更新
	Streak            int               `json:"streak"`
	LastCheckInAt     *time.Time        `json:"last_check_in_at,omitempty"`
	LastCheckInDay    string            `json:"last_check_in_day,omitempty"` // 空串表示从未打卡
	LastKnownLocation *Location         `json:"last_known_location,omitempty"`
	History           []CheckInEntry    `json:"check_in_history"`
	Status            ParticipantStatus `json:"status"`
	MissingSince      *time.Time        `json:"missing_since,omitempty"`
	DangerZone        *DangerZone       `json:"danger_zone,omitempty"`
}

// Clone 返回深拷贝，注册表对外只交出副本，避免调用方与巡检协程竞争同一份状态。
func (p *Participant) Clone() Participant {
	out := *p

	if p.LastCheckInAt != nil {
		t := *p.LastCheckInAt
		out.LastCheckInAt = &t
	}
	if p.MissingSince != nil {
		t := *p.MissingSince
		out.MissingSince = &t
	}
	if p.LastKnownLocation != nil {
		loc := *p.LastKnownLocation
		out.LastKnownLocation = &loc
	}
	if p.DangerZone != nil {
		dz := p.DangerZone.Clone()
		out.DangerZone = &dz
	}
	if p.History != nil {
		out.History = make([]CheckInEntry, len(p.History))
		for i, e := range p.History {
			out.History[i] = e
			if e.Location != nil {
				loc := *e.Location
				out.History[i].Location = &loc
			}
		}
	}

	return out
}
