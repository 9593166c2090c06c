package model

// 广播消息（事实来源在内存中，消息只向外扇出；时间统一用 RFC3339 字符串）

// ParticipantUpdateMessage 打卡成功或注册后的参与者快照
type ParticipantUpdateMessage struct {
	MessageID   string      `json:"message_id"` // 消息唯一ID，用于幂等性检查
	OccurredAt  string      `json:"occurred_at"`
	Participant Participant `json:"participant"`
}

// DangerZoneUpdateMessage 巡检产生新失联者后的完整危险区列表
type DangerZoneUpdateMessage struct {
	MessageID  string       `json:"message_id"`
	OccurredAt string       `json:"occurred_at"`
	SweptAt    string       `json:"swept_at"` // 本次巡检使用的评估时间
	Zones      []DangerZone `json:"zones"`
	NewMissing []string     `json:"new_missing"` // 本次新转入 missing 的参与者 ID
}

// ChatBroadcastMessage 分区聊天广播
type ChatBroadcastMessage struct {
	MessageID  string      `json:"message_id"`
	OccurredAt string      `json:"occurred_at"`
	Chat       ChatMessage `json:"chat"`
}

// ThreatBroadcastMessage 威胁报告广播
type ThreatBroadcastMessage struct {
	MessageID  string       `json:"message_id"`
	OccurredAt string       `json:"occurred_at"`
	Threat     ThreatReport `json:"threat"`
}

// SOSBroadcastMessage SOS 警报广播（raise 与 resolve 共用，靠 Alert.Active 区分）
type SOSBroadcastMessage struct {
	MessageID  string   `json:"message_id"`
	OccurredAt string   `json:"occurred_at"`
	Alert      SOSAlert `json:"alert"`
}
