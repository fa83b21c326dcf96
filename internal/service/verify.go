package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
)

// Verify validates a (license key, device id) pair and binds the device on
// first use. A deactivated license is reported as not found so that probing
// a key reveals nothing beyond "invalid".
//
// Binding is a single conditional UPDATE (device_id IS NULL) so that two
// concurrent first-use calls cannot both win; the loser re-reads and lands
// in the mismatch path. Retrying with the already-bound device id succeeds.
func Verify(ctx context.Context, licenseKey, deviceID, ipAddress string) (*model.LicenseSnapshot, error) {
	licenseKey = strings.TrimSpace(licenseKey)
	deviceID = strings.TrimSpace(deviceID)
	if licenseKey == "" || deviceID == "" {
		return nil, model.ErrMalformedRequest
	}

	db := database.DB.WithContext(ctx)
	now := time.Now().UTC()

	var license model.License
	err := db.Where("license_key = ?", licenseKey).First(&license).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrLicenseNotFound
	case err != nil:
		zap.S().Errorw("license lookup failed", "license_key", licenseKey, "error", err)
		return nil, model.ErrStorageUnavailable
	}
	if !license.Active {
		return nil, model.ErrLicenseNotFound
	}

	if !license.ExpiresAt.After(now) {
		return nil, model.ErrLicenseExpired
	}

	if license.DeviceID == nil {
		res := db.Model(&model.License{}).
			Where("license_key = ? AND device_id IS NULL", licenseKey).
			Update("device_id", deviceID)
		if res.Error != nil {
			zap.S().Errorw("device bind failed", "license_key", licenseKey, "error", res.Error)
			return nil, model.ErrStorageUnavailable
		}
		if res.RowsAffected == 0 {
			resolved, err := resolveLostBind(db, licenseKey, deviceID)
			if err != nil {
				return nil, err
			}
			license = *resolved
		} else {
			license.DeviceID = &deviceID
		}
	} else if *license.DeviceID != deviceID {
		return nil, model.ErrDeviceMismatch
	}

	RecordUsage(ctx, licenseKey, deviceID, ipAddress)

	return license.Snapshot(now), nil
}

// LicenseConfig returns the entitlement view served on the client config
// endpoint. Like Verify, an inactive key reads the same as an absent one.
// Expiry is not checked here; clients read their remaining time from the
// snapshot.
func LicenseConfig(ctx context.Context, licenseKey string) (*model.LicenseSnapshot, error) {
	licenseKey = strings.TrimSpace(licenseKey)
	if licenseKey == "" {
		return nil, model.ErrMalformedRequest
	}

	var license model.License
	err := database.DB.WithContext(ctx).Where("license_key = ?", licenseKey).First(&license).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrLicenseNotFound
	case err != nil:
		zap.S().Errorw("license lookup failed", "license_key", licenseKey, "error", err)
		return nil, model.ErrStorageUnavailable
	}
	if !license.Active {
		return nil, model.ErrLicenseNotFound
	}

	return license.Snapshot(time.Now().UTC()), nil
}

// resolveLostBind re-reads after a conditional bind matched no row. The
// winner may be this same device retrying, another device, or the license
// may be gone entirely (deleted between the read and the bind).
func resolveLostBind(db *gorm.DB, licenseKey, deviceID string) (*model.License, error) {
	var license model.License
	err := db.Where("license_key = ?", licenseKey).First(&license).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrLicenseNotFound
	case err != nil:
		zap.S().Errorw("license re-read failed", "license_key", licenseKey, "error", err)
		return nil, model.ErrStorageUnavailable
	}
	if license.DeviceID == nil || *license.DeviceID != deviceID {
		return nil, model.ErrDeviceMismatch
	}
	return &license, nil
}
