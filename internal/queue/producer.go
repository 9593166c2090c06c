package queue

import (
	"fmt"

	"go.uber.org/zap"

	"Lifeline/internal/model"
	"Lifeline/pkg/logger"
	"Lifeline/pkg/snowflake"
	"Lifeline/storage/mq"
)

func nextMessageID(prefix string) string {
	id, err := snowflake.NextID()
	if err != nil {
		logger.Logger.Error("Failed to generate message ID",
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		return ""
	}
	return fmt.Sprintf("%s_%d", prefix, id)
}

// PublishParticipantUpdate 发布参与者快照（打卡或建档之后）
func PublishParticipantUpdate(msg model.ParticipantUpdateMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = nextMessageID("participant")
	}

	if err := mq.PublishMessage(mq.EventsExchange, mq.RouteParticipantCheckedIn, msg); err != nil {
		logger.Logger.Error("Failed to publish participant update",
			zap.String("message_id", msg.MessageID),
			zap.String("participant_id", msg.Participant.ID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Debug("Published participant update",
		zap.String("message_id", msg.MessageID),
		zap.String("participant_id", msg.Participant.ID),
		zap.Int("streak", msg.Participant.Streak),
	)

	return nil
}

// PublishDangerZoneUpdate 发布巡检后的完整危险区列表
func PublishDangerZoneUpdate(msg model.DangerZoneUpdateMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = nextMessageID("dz")
	}

	if err := mq.PublishMessage(mq.EventsExchange, mq.RouteDangerZoneUpdated, msg); err != nil {
		logger.Logger.Error("Failed to publish danger zone update",
			zap.String("message_id", msg.MessageID),
			zap.Int("zone_count", len(msg.Zones)),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published danger zone update",
		zap.String("message_id", msg.MessageID),
		zap.Int("zone_count", len(msg.Zones)),
		zap.Strings("new_missing", msg.NewMissing),
	)

	return nil
}

// PublishChatMessage 发布分区聊天广播
func PublishChatMessage(msg model.ChatBroadcastMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = nextMessageID("chat")
	}

	if err := mq.PublishMessage(mq.EventsExchange, mq.RouteChatPosted, msg); err != nil {
		logger.Logger.Error("Failed to publish chat message",
			zap.String("message_id", msg.MessageID),
			zap.String("zone", msg.Chat.Zone),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// PublishThreatReport 发布威胁报告广播
func PublishThreatReport(msg model.ThreatBroadcastMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = nextMessageID("threat")
	}

	if err := mq.PublishMessage(mq.EventsExchange, mq.RouteThreatReported, msg); err != nil {
		logger.Logger.Error("Failed to publish threat report",
			zap.String("message_id", msg.MessageID),
			zap.String("zone", msg.Threat.Zone),
			zap.String("category", string(msg.Threat.Category)),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published threat report",
		zap.String("message_id", msg.MessageID),
		zap.String("zone", msg.Threat.Zone),
		zap.String("category", string(msg.Threat.Category)),
	)

	return nil
}

// PublishSOSAlert 发布 SOS 广播，raise 与 resolve 用不同路由键
func PublishSOSAlert(msg model.SOSBroadcastMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = nextMessageID("sos")
	}

	routingKey := mq.RouteSOSRaised
	if !msg.Alert.Active {
		routingKey = mq.RouteSOSResolved
	}

	if err := mq.PublishMessage(mq.EventsExchange, routingKey, msg); err != nil {
		logger.Logger.Error("Failed to publish SOS alert",
			zap.String("message_id", msg.MessageID),
			zap.String("alert_id", msg.Alert.ID),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published SOS alert",
		zap.String("message_id", msg.MessageID),
		zap.String("alert_id", msg.Alert.ID),
		zap.String("routing_key", routingKey),
	)

	return nil
}
