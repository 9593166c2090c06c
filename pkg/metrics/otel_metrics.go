package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SafetyMetrics 安全协调核心的指标集合
type SafetyMetrics struct {
	CheckInsTotal           metric.Int64Counter
	MissingTransitionsTotal metric.Int64Counter
	SweepDuration           metric.Float64Histogram
	ActiveDangerZones       metric.Int64Gauge
	ChatMessagesTotal       metric.Int64Counter
	ThreatReportsTotal      metric.Int64Counter
	SOSRaisedTotal          metric.Int64Counter
}

var (
	// 全局指标实例，未初始化时所有 Record* 都是空操作（测试不依赖 otel）
	instruments *SafetyMetrics

	meter = otel.Meter("lifeline")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	m := &SafetyMetrics{}
	var err error

	m.CheckInsTotal, err = meter.Int64Counter(
		"checkins_total",
		metric.WithDescription("Total number of accepted safety check-ins"),
		metric.WithUnit("{checkin}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create checkins_total: %w", err)
	}

	m.MissingTransitionsTotal, err = meter.Int64Counter(
		"missing_transitions_total",
		metric.WithDescription("Total number of participants flagged missing by sweeps"),
		metric.WithUnit("{participant}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create missing_transitions_total: %w", err)
	}

	m.SweepDuration, err = meter.Float64Histogram(
		"sweep_duration_seconds",
		metric.WithDescription("Time spent scanning the participant registry"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep_duration_seconds: %w", err)
	}

	m.ActiveDangerZones, err = meter.Int64Gauge(
		"danger_zones_active",
		metric.WithDescription("Number of materialized danger-zone records after the last sweep"),
		metric.WithUnit("{zone}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create danger_zones_active: %w", err)
	}

	m.ChatMessagesTotal, err = meter.Int64Counter(
		"zone_chat_messages_total",
		metric.WithDescription("Total number of zone chat messages posted"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create zone_chat_messages_total: %w", err)
	}

	m.ThreatReportsTotal, err = meter.Int64Counter(
		"threat_reports_total",
		metric.WithDescription("Total number of threat reports filed"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create threat_reports_total: %w", err)
	}

	m.SOSRaisedTotal, err = meter.Int64Counter(
		"sos_raised_total",
		metric.WithDescription("Total number of SOS alerts raised"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sos_raised_total: %w", err)
	}

	instruments = m
	return nil
}

func RecordCheckIn(ctx context.Context) {
	if instruments == nil {
		return
	}
	instruments.CheckInsTotal.Add(ctx, 1)
}

func RecordMissingTransitions(ctx context.Context, newMissing, activeZones int) {
	if instruments == nil {
		return
	}
	instruments.MissingTransitionsTotal.Add(ctx, int64(newMissing))
	instruments.ActiveDangerZones.Record(ctx, int64(activeZones))
}

func RecordSweep(ctx context.Context, d time.Duration) {
	if instruments == nil {
		return
	}
	instruments.SweepDuration.Record(ctx, d.Seconds())
}

func RecordChatMessage(ctx context.Context, zone string) {
	if instruments == nil {
		return
	}
	instruments.ChatMessagesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("zone", zone)),
	)
}

func RecordThreatReport(ctx context.Context, category string) {
	if instruments == nil {
		return
	}
	instruments.ThreatReportsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

func RecordSOSRaised(ctx context.Context) {
	if instruments == nil {
		return
	}
	instruments.SOSRaisedTotal.Add(ctx, 1)
}
