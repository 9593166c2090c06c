package queue

// worker 侧镜像消费者。每个队列一个阻塞消费者，流程统一：
// 反序列化 → SETNX 幂等占位 → GORM upsert → 标记完成。
// 占位失败返回 SkipMessageError 直接 ack，落库失败解除占位并 nack 重入队。

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"Lifeline/internal/cache"
	"Lifeline/internal/mirror"
	"Lifeline/internal/model"
	pkgerrors "Lifeline/pkg/errors"
	"Lifeline/pkg/logger"
	"Lifeline/storage/mq"
)

const (
	mirrorConsumerPrefetch = 16

	// 处理单条消息的落库超时
	mirrorWriteTimeout = 10 * time.Second
)

// StartParticipantMirrorConsumer 阻塞消费参与者快照并镜像到 participants 表
func StartParticipantMirrorConsumer() error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMirrorParticipants,
		ConsumerTag:   "mirror-participants",
		PrefetchCount: mirrorConsumerPrefetch,
		Handler: func(body []byte) error {
			var msg model.ParticipantUpdateMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("malformed participant message: %v", err)}
			}

			return withIdempotency(msg.MessageID, func(ctx context.Context) error {
				if err := mirror.SaveParticipant(ctx, msg.Participant); err != nil {
					return err
				}
				logger.Logger.Debug("Mirrored participant snapshot",
					zap.String("message_id", msg.MessageID),
					zap.String("participant_id", msg.Participant.ID),
				)
				return nil
			})
		},
	})
}

// StartDangerZoneMirrorConsumer 阻塞消费巡检结果并镜像到 danger_zones 表
func StartDangerZoneMirrorConsumer() error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMirrorDangerZones,
		ConsumerTag:   "mirror-danger-zones",
		PrefetchCount: mirrorConsumerPrefetch,
		Handler: func(body []byte) error {
			var msg model.DangerZoneUpdateMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("malformed danger zone message: %v", err)}
			}

			sweptAt, err := time.Parse(time.RFC3339, msg.SweptAt)
			if err != nil {
				return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("invalid swept_at %q: %v", msg.SweptAt, err)}
			}

			return withIdempotency(msg.MessageID, func(ctx context.Context) error {
				if err := mirror.SaveDangerZones(ctx, msg.Zones, sweptAt); err != nil {
					return err
				}
				logger.Logger.Info("Mirrored danger zone sweep",
					zap.String("message_id", msg.MessageID),
					zap.Int("zones", len(msg.Zones)),
					zap.Int("new_missing", len(msg.NewMissing)),
				)
				return nil
			})
		},
	})
}

// StartChatMirrorConsumer 阻塞消费分区聊天消息并镜像到 zone_messages 表
func StartChatMirrorConsumer() error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMirrorChat,
		ConsumerTag:   "mirror-chat",
		PrefetchCount: mirrorConsumerPrefetch,
		Handler: func(body []byte) error {
			var msg model.ChatBroadcastMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("malformed chat message: %v", err)}
			}

			return withIdempotency(msg.MessageID, func(ctx context.Context) error {
				return mirror.SaveChatMessage(ctx, msg.Chat)
			})
		},
	})
}

// StartThreatMirrorConsumer 阻塞消费威胁报告并镜像到 threat_reports 表
func StartThreatMirrorConsumer() error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMirrorThreats,
		ConsumerTag:   "mirror-threats",
		PrefetchCount: mirrorConsumerPrefetch,
		Handler: func(body []byte) error {
			var msg model.ThreatBroadcastMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("malformed threat message: %v", err)}
			}

			return withIdempotency(msg.MessageID, func(ctx context.Context) error {
				return mirror.SaveThreatReport(ctx, msg.Threat)
			})
		},
	})
}

// StartSOSMirrorConsumer 阻塞消费 SOS 警报（raise 与 resolve）并镜像到 sos_alerts 表
func StartSOSMirrorConsumer() error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMirrorSOS,
		ConsumerTag:   "mirror-sos",
		PrefetchCount: mirrorConsumerPrefetch,
		Handler: func(body []byte) error {
			var msg model.SOSBroadcastMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("malformed sos message: %v", err)}
			}

			return withIdempotency(msg.MessageID, func(ctx context.Context) error {
				if err := mirror.SaveSOSAlert(ctx, msg.Alert); err != nil {
					return err
				}
				logger.Logger.Info("Mirrored sos alert",
					zap.String("message_id", msg.MessageID),
					zap.String("alert_id", msg.Alert.ID),
					zap.Bool("active", msg.Alert.Active),
				)
				return nil
			})
		},
	})
}

// StartAllConsumers 启动全部镜像消费者并阻塞到 ctx 取消。
// 消费者因连接问题退出后隔几秒重启，worker 的生命周期由信号控制。
func StartAllConsumers(ctx context.Context) {
	consumers := []struct {
		name  string
		start func() error
	}{
		{"mirror-participants", StartParticipantMirrorConsumer},
		{"mirror-danger-zones", StartDangerZoneMirrorConsumer},
		{"mirror-chat", StartChatMirrorConsumer},
		{"mirror-threats", StartThreatMirrorConsumer},
		{"mirror-sos", StartSOSMirrorConsumer},
	}

	for _, c := range consumers {
		go func(name string, start func() error) {
			for {
				if err := start(); err != nil {
					logger.Logger.Error("Consumer exited with error",
						zap.String("consumer", name),
						zap.Error(err),
					)
				}

				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
				}
			}
		}(c.name, c.start)
	}

	<-ctx.Done()
}

// withIdempotency 围绕 redis 占位执行镜像写入。
// 没有 message_id 的消息视为老格式，直接处理不做幂等保护。
func withIdempotency(messageID string, process func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
	defer cancel()

	if messageID == "" {
		return process(ctx)
	}

	acquired, err := cache.TryMarkMessageProcessing(ctx, messageID, 0)
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !acquired {
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("message %s already processed", messageID)}
	}

	if err := process(ctx); err != nil {
		if unmarkErr := cache.UnmarkMessageProcessing(ctx, messageID); unmarkErr != nil {
			logger.Logger.Warn("Failed to release idempotency mark",
				zap.String("message_id", messageID),
				zap.Error(unmarkErr),
			)
		}
		return err
	}

	if err := cache.MarkMessageProcessed(ctx, messageID, 0); err != nil {
		logger.Logger.Warn("Failed to extend idempotency mark",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
	return nil
}
