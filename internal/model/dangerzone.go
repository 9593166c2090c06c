package model

import "time"

// ReasonStreakBroken 危险区记录目前唯一的成因标签
const ReasonStreakBroken = "streak-broken"

// DangerZone 危险区记录：由失联判定派生，不独立存在。
// 每次进入 missing 都整体重建（新 ID），打卡成功即整体清空，不做增量修补。
type DangerZone struct {
	ID              string    `json:"id"`
	Reason          string    `json:"reason"`
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Location        *Location `json:"location,omitempty"` // 最后已知位置，可能为空
	LastSeenAt      time.Time `json:"last_seen_at"`
}

// Clone 返回深拷贝
func (d *DangerZone) Clone() DangerZone {
	out := *d
	if d.Location != nil {
		loc := *d.Location
		out.Location = &loc
	}
	return out
}
