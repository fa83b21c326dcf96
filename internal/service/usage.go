package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
)

// RecordUsage appends a usage_stats row and touches last_used_at. Usage
// analytics is best effort; a failure here never rolls back or fails the
// verification that triggered it.
func RecordUsage(ctx context.Context, licenseKey, deviceID, ipAddress string) {
	now := time.Now().UTC()
	stat := &model.UsageStat{
		LicenseKey: licenseKey,
		DeviceID:   deviceID,
		IPAddress:  ipAddress,
		Timestamp:  now,
	}
	if err := database.DB.WithContext(ctx).Create(stat).Error; err != nil {
		zap.S().Errorw("usage record write failed", "license_key", licenseKey, "error", err)
	}

	err := database.DB.WithContext(ctx).Model(&model.License{}).
		Where("license_key = ?", licenseKey).
		Update("last_used_at", now).Error
	if err != nil {
		zap.S().Errorw("last_used_at update failed", "license_key", licenseKey, "error", err)
	}
}

// DistinctLicensesToday counts distinct license keys seen since local
// midnight, for the dashboard's "used today" figure.
func DistinctLicensesToday(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var count int64
	err := database.DB.WithContext(ctx).Model(&model.UsageStat{}).
		Where("timestamp >= ?", midnight).
		Distinct("license_key").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecentUsage returns the latest usage rows for a license, newest first.
func RecentUsage(ctx context.Context, licenseKey string, limit int) ([]model.UsageStat, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var stats []model.UsageStat
	err := database.DB.WithContext(ctx).
		Where("license_key = ?", licenseKey).
		Order("timestamp DESC").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
