package model

import "time"

// MaxChatBodyLength 单条聊天消息长度上限
const MaxChatBodyLength = 500

// ChatMessage 分区聊天消息
type ChatMessage struct {
	ID              string    `json:"id"`
	Zone            string    `json:"zone"`
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Body            string    `json:"body"`
	PostedAt        time.Time `json:"posted_at"`
}
