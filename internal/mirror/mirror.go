package mirror

// 持久化镜像的写入/读取。内存注册表是事实来源，这里的写入全部是幂等 upsert，
// 失败由调用方决定重试（worker 借 MQ 重新入队），绝不反向影响内存状态。

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Lifeline/internal/model"
	"Lifeline/storage/database"
)

// SaveParticipant 按 participant_id upsert 参与者快照
func SaveParticipant(ctx context.Context, p model.Participant) error {
	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	row := model.ParticipantRow{
		ParticipantID:  p.ID,
		Name:           p.Name,
		Streak:         p.Streak,
		LastCheckInAt:  p.LastCheckInAt,
		LastCheckInDay: p.LastCheckInDay,
		Status:         string(p.Status),
		MissingSince:   p.MissingSince,
	}
	if p.LastKnownLocation != nil {
		lat, lng := p.LastKnownLocation.Lat, p.LastKnownLocation.Lng
		row.Lat, row.Lng = &lat, &lng
	}
	if p.DangerZone != nil {
		id := p.DangerZone.ID
		row.DangerZoneID = &id
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "streak", "last_check_in_at", "last_check_in_day",
			"lat", "lng", "status", "missing_since", "danger_zone_id", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert participant %s: %w", p.ID, err)
	}
	return nil
}

// SaveDangerZones 落一批危险区记录，并把该参与者不在本批里的旧记录标记清除。
// 记录按 record_id 幂等，重复消费同一条消息不会产生新行。
func SaveDangerZones(ctx context.Context, zones []model.DangerZone, sweptAt time.Time) error {
	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	activeIDs := make([]string, 0, len(zones))
	for _, z := range zones {
		row := model.DangerZoneRow{
			RecordID:        z.ID,
			Reason:          z.Reason,
			ParticipantID:   z.ParticipantID,
			ParticipantName: z.ParticipantName,
			LastSeenAt:      z.LastSeenAt,
		}
		if z.Location != nil {
			lat, lng := z.Location.Lat, z.Location.Lng
			row.Lat, row.Lng = &lat, &lng
		}

		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_id"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert danger zone %s: %w", z.ID, err)
		}
		activeIDs = append(activeIDs, z.ID)
	}

	// 不在当前列表里的未清除记录，说明对应参与者已经重新打卡
	q := db.WithContext(ctx).Model(&model.DangerZoneRow{}).Where("cleared_at IS NULL")
	if len(activeIDs) > 0 {
		q = q.Where("record_id NOT IN ?", activeIDs)
	}
	if err := q.Update("cleared_at", sweptAt).Error; err != nil {
		return fmt.Errorf("failed to clear stale danger zones: %w", err)
	}

	return nil
}

// SaveChatMessage 按 message_id 幂等落一条聊天消息
func SaveChatMessage(ctx context.Context, msg model.ChatMessage) error {
	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	row := model.ChatMessageRow{
		MessageID:       msg.ID,
		Zone:            msg.Zone,
		ParticipantID:   msg.ParticipantID,
		ParticipantName: msg.ParticipantName,
		Body:            msg.Body,
		PostedAt:        msg.PostedAt,
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to insert chat message %s: %w", msg.ID, err)
	}
	return nil
}

// SaveThreatReport 按 report_id 幂等落一条威胁报告
func SaveThreatReport(ctx context.Context, t model.ThreatReport) error {
	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	row := model.ThreatReportRow{
		ReportID:     t.ID,
		Zone:         t.Zone,
		ReporterID:   t.ReporterID,
		ReporterName: t.ReporterName,
		Category:     string(t.Category),
		Description:  t.Description,
		ReportedAt:   t.ReportedAt,
	}
	if t.Location != nil {
		lat, lng := t.Location.Lat, t.Location.Lng
		row.Lat, row.Lng = &lat, &lng
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to insert threat report %s: %w", t.ID, err)
	}
	return nil
}

// SaveSOSAlert 按 alert_id upsert SOS 警报（resolve 会更新同一行）
func SaveSOSAlert(ctx context.Context, a model.SOSAlert) error {
	db := database.DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	row := model.SOSAlertRow{
		AlertID:         a.ID,
		ParticipantID:   a.ParticipantID,
		ParticipantName: a.ParticipantName,
		Message:         a.Message,
		RaisedAt:        a.RaisedAt,
		Active:          a.Active,
		ResolvedAt:      a.ResolvedAt,
	}
	if a.Location != nil {
		lat, lng := a.Location.Lat, a.Location.Lng
		row.Lat, row.Lng = &lat, &lng
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "alert_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"active", "resolved_at", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert sos alert %s: %w", a.ID, err)
	}
	return nil
}

// LoadParticipants 读回镜像里的参与者快照，server 启动时预热注册表用。
// 危险区记录不回填：重启后的第一次巡检会按当前陈旧规则重新派生。
func LoadParticipants(ctx context.Context) ([]model.Participant, error) {
	db := database.DB()
	if db == nil {
		return nil, gorm.ErrInvalidDB
	}

	var rows []model.ParticipantRow
	if err := db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}

	out := make([]model.Participant, 0, len(rows))
	for _, row := range rows {
		p := model.Participant{
			ID:             row.ParticipantID,
			Name:           row.Name,
			Streak:         row.Streak,
			LastCheckInAt:  row.LastCheckInAt,
			LastCheckInDay: row.LastCheckInDay,
			Status:         model.ParticipantStatus(row.Status),
			MissingSince:   row.MissingSince,
		}
		if p.Status == "" {
			p.Status = model.StatusUnknown
		}
		if row.Lat != nil && row.Lng != nil {
			p.LastKnownLocation = &model.Location{Lat: *row.Lat, Lng: *row.Lng}
		}
		out = append(out, p)
	}
	return out, nil
}
