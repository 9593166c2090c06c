package model

import "time"

// MaxSOSMessageLength SOS 附言长度上限
const MaxSOSMessageLength = 300

// SOSAlert 全局求救警报，不限定分区
type SOSAlert struct {
	ID              string     `json:"id"`
	ParticipantID   string     `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	Location        *Location  `json:"location,omitempty"`
	Message         string     `json:"message,omitempty"`
	RaisedAt        time.Time  `json:"raised_at"`
	Active          bool       `json:"active"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}
