package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
	"license-key-server/internal/util"
)

// AdminSession is the request-scoped capability every mutation requires.
// The auth middleware builds it from a validated session token; nothing
// here is process-global.
type AdminSession struct {
	LoginAt time.Time
}

var ErrNoAdminSession = errors.New("admin session required")

const maxKeyAttempts = 5

// CreateLicense inserts a new unbound, active license and returns it. Key
// generation retries on a uniqueness violation with a fresh key.
func CreateLicense(ctx context.Context, session *AdminSession, in model.CreateLicenseInput) (*model.License, error) {
	if session == nil {
		return nil, ErrNoAdminSession
	}

	if in.Tier == 0 {
		in.Tier = 25
	}
	if in.Plan == "" {
		in.Plan = "Standard"
	}
	if in.MaxDevices == 0 {
		in.MaxDevices = 1
	}

	now := time.Now().UTC()
	license := &model.License{
		ExpiresAt:  now.Add(time.Duration(in.Days) * 24 * time.Hour),
		Tier:       in.Tier,
		Plan:       in.Plan,
		MaxDevices: in.MaxDevices,
		Active:     true,
		CreatedAt:  now,
		Notes:      in.Notes,
	}
	if in.Email != "" {
		license.Email = &in.Email
	}
	if in.ExternalID != "" {
		license.ExternalID = &in.ExternalID
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		license.LicenseKey = util.GenerateLicenseKey()
		err := database.DB.WithContext(ctx).Create(license).Error
		if err == nil {
			LogAction(model.ActionCreateLicense, &license.LicenseKey,
				fmt.Sprintf("duration: %d days, tier: %d, plan: %s", in.Days, in.Tier, in.Plan))
			return license, nil
		}
		if errors.Is(classifyStoreError(err), model.ErrDuplicateKey) {
			zap.S().Warnw("license key collision, regenerating", "license_key", license.LicenseKey)
			continue
		}
		zap.S().Errorw("license create failed", "error", err)
		return nil, model.ErrStorageUnavailable
	}
	// Exhausted key generation attempts; treat like a store failure.
	return nil, model.ErrStorageUnavailable
}

// ExtendLicense adds days to the stored expiry, not to now, so repeated
// extensions compound even after the license has lapsed.
func ExtendLicense(ctx context.Context, session *AdminSession, licenseKey string, days int) (*model.License, error) {
	if session == nil {
		return nil, ErrNoAdminSession
	}

	license, err := fetchLicense(ctx, licenseKey)
	if err != nil {
		return nil, err
	}

	newExpiry := license.ExpiresAt.Add(time.Duration(days) * 24 * time.Hour)
	err = database.DB.WithContext(ctx).Model(license).Update("expires_at", newExpiry).Error
	if err != nil {
		return nil, model.ErrStorageUnavailable
	}
	license.ExpiresAt = newExpiry

	LogAction(model.ActionExtendLicense, &license.LicenseKey, fmt.Sprintf("extended by %d days", days))
	return license, nil
}

// ResetDevice clears the device binding unconditionally. It is the only
// supported way to move a license to a new device.
func ResetDevice(ctx context.Context, session *AdminSession, licenseKey string) error {
	if session == nil {
		return ErrNoAdminSession
	}

	license, err := fetchLicense(ctx, licenseKey)
	if err != nil {
		return err
	}

	err = database.DB.WithContext(ctx).Model(license).Update("device_id", nil).Error
	if err != nil {
		return model.ErrStorageUnavailable
	}

	LogAction(model.ActionResetDevice, &license.LicenseKey, "device unbound")
	return nil
}

// DeactivateLicense turns the license off. Verification then reports it as
// not found; token authentication reports it as deactivated.
func DeactivateLicense(ctx context.Context, session *AdminSession, licenseKey string) error {
	return setActive(ctx, session, licenseKey, false)
}

// ReactivateLicense turns a deactivated license back on.
func ReactivateLicense(ctx context.Context, session *AdminSession, licenseKey string) error {
	return setActive(ctx, session, licenseKey, true)
}

func setActive(ctx context.Context, session *AdminSession, licenseKey string, active bool) error {
	if session == nil {
		return ErrNoAdminSession
	}

	license, err := fetchLicense(ctx, licenseKey)
	if err != nil {
		return err
	}

	err = database.DB.WithContext(ctx).Model(license).Update("active", active).Error
	if err != nil {
		return model.ErrStorageUnavailable
	}

	if active {
		LogAction(model.ActionReactivateLicense, &license.LicenseKey, "license reactivated")
	} else {
		LogAction(model.ActionDeactivateLicense, &license.LicenseKey, "license deactivated")
	}
	return nil
}

// DeleteLicense hard-deletes the record. The audit row referencing the
// now-gone key is kept.
func DeleteLicense(ctx context.Context, session *AdminSession, licenseKey string) error {
	if session == nil {
		return ErrNoAdminSession
	}

	license, err := fetchLicense(ctx, licenseKey)
	if err != nil {
		return err
	}

	err = database.DB.WithContext(ctx).Delete(license).Error
	if err != nil {
		return model.ErrStorageUnavailable
	}

	LogAction(model.ActionDeleteLicense, &licenseKey, "license deleted")
	return nil
}

// ListLicenses returns all licenses for the dashboard, newest first.
func ListLicenses(ctx context.Context, session *AdminSession) ([]model.License, error) {
	if session == nil {
		return nil, ErrNoAdminSession
	}

	var licenses []model.License
	err := database.DB.WithContext(ctx).Order("created_at DESC").Find(&licenses).Error
	if err != nil {
		return nil, model.ErrStorageUnavailable
	}
	return licenses, nil
}

// Statistics summarizes license stock and today's distinct usage.
func Statistics(ctx context.Context, session *AdminSession) (*model.LicenseStatistics, error) {
	if session == nil {
		return nil, ErrNoAdminSession
	}

	db := database.DB.WithContext(ctx)
	now := time.Now().UTC()
	stats := &model.LicenseStatistics{}

	if err := db.Model(&model.License{}).Count(&stats.TotalLicenses).Error; err != nil {
		return nil, model.ErrStorageUnavailable
	}
	err := db.Model(&model.License{}).
		Where("active = ? AND expires_at > ?", true, now).
		Count(&stats.ActiveLicenses).Error
	if err != nil {
		return nil, model.ErrStorageUnavailable
	}
	stats.ExpiredLicenses = stats.TotalLicenses - stats.ActiveLicenses

	used, err := DistinctLicensesToday(ctx)
	if err != nil {
		return nil, model.ErrStorageUnavailable
	}
	stats.UsedToday = used

	return stats, nil
}

func fetchLicense(ctx context.Context, licenseKey string) (*model.License, error) {
	var license model.License
	err := database.DB.WithContext(ctx).Where("license_key = ?", licenseKey).First(&license).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrLicenseNotFound
	case err != nil:
		return nil, model.ErrStorageUnavailable
	}
	return &license, nil
}

// classifyStoreError folds driver-level create failures into the error
// taxonomy. The sqlite driver reports uniqueness violations as plain errors,
// so the constraint name check backs up gorm's translation.
func classifyStoreError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
		return model.ErrDuplicateKey
	}
	return model.ErrStorageUnavailable
}
