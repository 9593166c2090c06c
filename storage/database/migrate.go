package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Lifeline/internal/model"
	"Lifeline/pkg/logger"
)

// Migrate 运行数据库迁移，创建所有镜像表
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.ParticipantRow{},
		&model.DangerZoneRow{},
		&model.ChatMessageRow{},
		&model.ThreatReportRow{},
		&model.SOSAlertRow{},
	)

	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
