package model

// 持久化镜像表。内存注册表才是单进程内的事实来源，
// 这些行由 worker 消费广播消息后 fire-and-forget 写入，落库失败不回滚内存状态。

import "time"

// ParticipantRow participants 镜像行，按 participant_id 幂等 upsert
type ParticipantRow struct {
	BaseModel
	ParticipantID  string     `gorm:"uniqueIndex;type:varchar(128);not null" json:"participant_id"`
	Name           string     `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Streak         int        `gorm:"not null;default:0" json:"streak"`
	LastCheckInAt  *time.Time `gorm:"type:timestamptz" json:"last_check_in_at,omitempty"`
	LastCheckInDay string     `gorm:"type:varchar(10);not null;default:'';index:idx_participants_day" json:"last_check_in_day"`
	Lat            *float64   `json:"lat,omitempty"`
	Lng            *float64   `json:"lng,omitempty"`
	Status         string     `gorm:"type:varchar(16);not null;default:'unknown';index:idx_participants_status" json:"status"`
	MissingSince   *time.Time `gorm:"type:timestamptz" json:"missing_since,omitempty"`
	DangerZoneID   *string    `gorm:"type:varchar(64)" json:"danger_zone_id,omitempty"`
}

func (ParticipantRow) TableName() string {
	return "participants"
}

// DangerZoneRow danger_zones 镜像行，record_id 即派生记录的新鲜 ID
type DangerZoneRow struct {
	BaseModel
	RecordID        string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"record_id"`
	Reason          string     `gorm:"type:varchar(32);not null" json:"reason"`
	ParticipantID   string     `gorm:"type:varchar(128);not null;index:idx_danger_zones_participant" json:"participant_id"`
	ParticipantName string     `gorm:"type:varchar(64);not null;default:''" json:"participant_name"`
	Lat             *float64   `json:"lat,omitempty"`
	Lng             *float64   `json:"lng,omitempty"`
	LastSeenAt      time.Time  `gorm:"type:timestamptz;not null" json:"last_seen_at"`
	ClearedAt       *time.Time `gorm:"type:timestamptz" json:"cleared_at,omitempty"`
}

func (DangerZoneRow) TableName() string {
	return "danger_zones"
}

// ChatMessageRow zone_messages 镜像行
type ChatMessageRow struct {
	BaseModel
	MessageID       string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"message_id"`
	Zone            string    `gorm:"type:varchar(64);not null;index:idx_zone_messages_zone" json:"zone"`
	ParticipantID   string    `gorm:"type:varchar(128);not null" json:"participant_id"`
	ParticipantName string    `gorm:"type:varchar(64);not null;default:''" json:"participant_name"`
	Body            string    `gorm:"type:varchar(512);not null" json:"body"`
	PostedAt        time.Time `gorm:"type:timestamptz;not null" json:"posted_at"`
}

func (ChatMessageRow) TableName() string {
	return "zone_messages"
}

// ThreatReportRow threat_reports 镜像行
type ThreatReportRow struct {
	BaseModel
	ReportID     string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"report_id"`
	Zone         string    `gorm:"type:varchar(64);not null;index:idx_threat_reports_zone" json:"zone"`
	ReporterID   string    `gorm:"type:varchar(128);not null" json:"reporter_id"`
	ReporterName string    `gorm:"type:varchar(64);not null;default:''" json:"reporter_name"`
	Category     string    `gorm:"type:varchar(16);not null" json:"category"`
	Description  string    `gorm:"type:varchar(512);not null" json:"description"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	ReportedAt   time.Time `gorm:"type:timestamptz;not null" json:"reported_at"`
}

func (ThreatReportRow) TableName() string {
	return "threat_reports"
}

// SOSAlertRow sos_alerts 镜像行
type SOSAlertRow struct {
	BaseModel
	AlertID         string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"alert_id"`
	ParticipantID   string     `gorm:"type:varchar(128);not null;index:idx_sos_alerts_participant" json:"participant_id"`
	ParticipantName string     `gorm:"type:varchar(64);not null;default:''" json:"participant_name"`
	Lat             *float64   `json:"lat,omitempty"`
	Lng             *float64   `json:"lng,omitempty"`
	Message         string     `gorm:"type:varchar(320);not null;default:''" json:"message"`
	RaisedAt        time.Time  `gorm:"type:timestamptz;not null" json:"raised_at"`
	Active          bool       `gorm:"not null;default:true;index:idx_sos_alerts_active" json:"active"`
	ResolvedAt      *time.Time `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
}

func (SOSAlertRow) TableName() string {
	return "sos_alerts"
}
