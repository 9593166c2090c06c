package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 参与者 / 打卡模块错误。
var (
	InvalidParticipantID = Definition{Code: "INVALID_PARTICIPANT_ID", Message: "Participant id is required"}
	ParticipantNotFound  = Definition{Code: "PARTICIPANT_NOT_FOUND", Message: "Participant not found"}
)

// 分区聊天模块错误。
var (
	ZoneRequired = Definition{Code: "ZONE_REQUIRED", Message: "Zone id is required"}
	MessageEmpty = Definition{Code: "MESSAGE_EMPTY", Message: "Message body is empty"}
)

// 威胁报告模块错误。
var (
	ThreatCategoryInvalid = Definition{Code: "THREAT_CATEGORY_INVALID", Message: "Threat category invalid"}
	ThreatDescriptionEmpty = Definition{Code: "THREAT_DESCRIPTION_EMPTY", Message: "Threat description is empty"}
)

// SOS 模块错误。
var (
	SOSNotFound = Definition{Code: "SOS_NOT_FOUND", Message: "SOS alert not found"}
)

// 通用错误。
var (
	RateLimited = Definition{Code: "RATE_LIMITED", Message: "Too many requests"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidParticipantID.Code:   InvalidParticipantID,
	ParticipantNotFound.Code:    ParticipantNotFound,
	ZoneRequired.Code:           ZoneRequired,
	MessageEmpty.Code:           MessageEmpty,
	ThreatCategoryInvalid.Code:  ThreatCategoryInvalid,
	ThreatDescriptionEmpty.Code: ThreatDescriptionEmpty,
	SOSNotFound.Code:            SOSNotFound,
	RateLimited.Code:            RateLimited,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// SkipMessageError 消费者幂等检查命中重复消息时返回，表示跳过且不重试。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

// IsSkipMessageError 判断错误是否为 SkipMessageError。
func IsSkipMessageError(err error) bool {
	_, ok := err.(*SkipMessageError)
	return ok
}
