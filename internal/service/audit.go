package service

import (
	"time"

	"go.uber.org/zap"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
)

// LogAction appends one admin_logs row. Best effort: an audit write failure
// is logged but never fails the operation it accompanies.
func LogAction(action string, targetKey *string, details string) {
	entry := &model.AdminLog{
		Action:    action,
		TargetKey: targetKey,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
	if err := database.DB.Create(entry).Error; err != nil {
		zap.S().Errorw("audit log write failed", "action", action, "error", err)
	}
}

// GetAdminLogs returns a page of audit entries, newest first.
func GetAdminLogs(page, pageSize int) ([]model.AdminLog, int64, error) {
	var logs []model.AdminLog
	var total int64

	db := database.DB

	if err := db.Model(&model.AdminLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := db.Order("timestamp DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
