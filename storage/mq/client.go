package mq

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"Lifeline/config"
)

// 拓扑：一个 topic 交换机承载全部广播，worker 侧按路由键分队列消费。
const (
	EventsExchange = "lifeline.events"

	QueueMirrorParticipants = "mirror.participants"
	QueueMirrorDangerZones  = "mirror.danger_zones"
	QueueMirrorChat         = "mirror.chat"
	QueueMirrorThreats      = "mirror.threats"
	QueueMirrorSOS          = "mirror.sos"

	RouteParticipantCheckedIn = "participant.checked_in"
	RouteDangerZoneUpdated    = "danger_zone.updated"
	RouteChatPosted           = "chat.posted"
	RouteThreatReported       = "threat.reported"
	RouteSOSRaised            = "sos.raised"
	RouteSOSResolved          = "sos.resolved"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		var c *amqp.Connection
		c, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			return
		}

		ch, err := c.Channel()
		if err != nil {
			connErr = err
			_ = c.Close()
			return
		}
		defer ch.Close()

		if connErr = declareTopology(ch); connErr != nil {
			_ = c.Close()
			return
		}

		conn = c
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// Ready 广播通道是否可用
func Ready() bool {
	return conn != nil && !conn.IsClosed()
}

func Close(ctx interface{ Done() <-chan struct{} }) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("timed out closing RabbitMQ connection")
	case err := <-done:
		return err
	}
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}

	bindings := []struct {
		queue string
		keys  []string
	}{
		{QueueMirrorParticipants, []string{RouteParticipantCheckedIn}},
		{QueueMirrorDangerZones, []string{RouteDangerZoneUpdated}},
		{QueueMirrorChat, []string{RouteChatPosted}},
		{QueueMirrorThreats, []string{RouteThreatReported}},
		{QueueMirrorSOS, []string{RouteSOSRaised, RouteSOSResolved}},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		for _, key := range b.keys {
			if err := ch.QueueBind(b.queue, key, EventsExchange, false, nil); err != nil {
				return fmt.Errorf("failed to bind queue %s to %s: %w", b.queue, key, err)
			}
		}
	}

	return nil
}
