package model

import "time"

// ThreatCategory 威胁类别枚举
type ThreatCategory string

const (
	ThreatFire      ThreatCategory = "fire"
	ThreatFlood     ThreatCategory = "flood"
	ThreatCollapse  ThreatCategory = "collapse"
	ThreatGasLeak   ThreatCategory = "gas-leak"
	ThreatBlockage  ThreatCategory = "blockage" // 道路阻断
	ThreatOther     ThreatCategory = "other"
)

// ValidThreatCategories 允许上报的威胁类别集合
var ValidThreatCategories = map[ThreatCategory]bool{
	ThreatFire:     true,
	ThreatFlood:    true,
	ThreatCollapse: true,
	ThreatGasLeak:  true,
	ThreatBlockage: true,
	ThreatOther:    true,
}

// MaxThreatDescriptionLength 威胁描述长度上限
const MaxThreatDescriptionLength = 500

// ThreatReport 分区威胁报告
type ThreatReport struct {
	ID           string         `json:"id"`
	Zone         string         `json:"zone"`
	ReporterID   string         `json:"reporter_id"`
	ReporterName string         `json:"reporter_name"`
	Category     ThreatCategory `json:"category"`
	Description  string         `json:"description"`
	Location     *Location      `json:"location,omitempty"`
	ReportedAt   time.Time      `json:"reported_at"`
}
