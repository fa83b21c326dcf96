package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
)

var testSession = &AdminSession{LoginAt: time.Now()}

func TestCreateLicense(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	license, err := CreateLicense(context.Background(), testSession, model.CreateLicenseInput{
		Days:  30,
		Tier:  50,
		Plan:  "Elevated",
		Email: "buyer@example.com",
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^GTO-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`), license.LicenseKey)
	assert.Nil(t, license.DeviceID)
	assert.True(t, license.Active)
	assert.Equal(t, 50, license.Tier)
	assert.Equal(t, "Elevated", license.Plan)
	assert.Equal(t, 1, license.MaxDevices)
	require.NotNil(t, license.Email)
	assert.Equal(t, "buyer@example.com", *license.Email)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), license.ExpiresAt, time.Minute)

	var logCount int64
	database.DB.Model(&model.AdminLog{}).Where("action = ?", model.ActionCreateLicense).Count(&logCount)
	assert.EqualValues(t, 1, logCount)
}

func TestCreateLicenseDefaults(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	license, err := CreateLicense(context.Background(), testSession, model.CreateLicenseInput{Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 25, license.Tier)
	assert.Equal(t, "Standard", license.Plan)
	assert.Equal(t, 1, license.MaxDevices)
	assert.Nil(t, license.Email)
}

func TestExtendLicenseIsAdditiveOnStoredExpiry(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	expiry := time.Now().Add(10 * 24 * time.Hour).UTC().Truncate(time.Second)
	seedLicense(t, "GTO-EXTE-NDME-0001", nil, expiry, true)

	license, err := ExtendLicense(context.Background(), testSession, "GTO-EXTE-NDME-0001", 30)
	require.NoError(t, err)
	assert.Equal(t, expiry.Add(30*24*time.Hour), license.ExpiresAt.UTC().Truncate(time.Second))

	// A lapsed license extends from its past expiry, not from now.
	lapsed := time.Now().Add(-5 * 24 * time.Hour).UTC().Truncate(time.Second)
	seedLicense(t, "GTO-EXTE-NDME-0002", nil, lapsed, true)

	license, err = ExtendLicense(context.Background(), testSession, "GTO-EXTE-NDME-0002", 3)
	require.NoError(t, err)
	assert.Equal(t, lapsed.Add(3*24*time.Hour), license.ExpiresAt.UTC().Truncate(time.Second))

	_, err = ExtendLicense(context.Background(), testSession, "GTO-DOES-NOTE-XIST", 30)
	assert.ErrorIs(t, err, model.ErrLicenseNotFound)
}

func TestResetDeviceAllowsRebinding(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	bound := "device-1"
	seedLicense(t, "GTO-REBI-ND00-0001", &bound, time.Now().Add(24*time.Hour), true)

	require.NoError(t, ResetDevice(context.Background(), testSession, "GTO-REBI-ND00-0001"))

	snapshot, err := Verify(context.Background(), "GTO-REBI-ND00-0001", "device-2", "")
	require.NoError(t, err)
	assert.Equal(t, "GTO-REBI-ND00-0001", snapshot.LicenseKey)

	var stored model.License
	require.NoError(t, database.DB.Where("license_key = ?", "GTO-REBI-ND00-0001").First(&stored).Error)
	require.NotNil(t, stored.DeviceID)
	assert.Equal(t, "device-2", *stored.DeviceID)
}

func TestDeactivateAndReactivate(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	seedLicense(t, "GTO-FLIP-FLIP-0001", nil, time.Now().Add(24*time.Hour), true)

	require.NoError(t, DeactivateLicense(context.Background(), testSession, "GTO-FLIP-FLIP-0001"))
	_, err := Verify(context.Background(), "GTO-FLIP-FLIP-0001", "device-1", "")
	assert.ErrorIs(t, err, model.ErrLicenseNotFound)

	require.NoError(t, ReactivateLicense(context.Background(), testSession, "GTO-FLIP-FLIP-0001"))
	_, err = Verify(context.Background(), "GTO-FLIP-FLIP-0001", "device-1", "")
	assert.NoError(t, err)
}

func TestDeleteLicenseKeepsAuditEntry(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	seedLicense(t, "GTO-DELE-TEME-0001", nil, time.Now().Add(24*time.Hour), true)

	require.NoError(t, DeleteLicense(context.Background(), testSession, "GTO-DELE-TEME-0001"))

	var count int64
	database.DB.Model(&model.License{}).Where("license_key = ?", "GTO-DELE-TEME-0001").Count(&count)
	assert.EqualValues(t, 0, count)

	var entry model.AdminLog
	err := database.DB.Where("action = ?", model.ActionDeleteLicense).First(&entry).Error
	require.NoError(t, err)
	require.NotNil(t, entry.TargetKey)
	assert.Equal(t, "GTO-DELE-TEME-0001", *entry.TargetKey)
}

func TestMutationsRequireSession(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	_, err := CreateLicense(context.Background(), nil, model.CreateLicenseInput{Days: 30})
	assert.ErrorIs(t, err, ErrNoAdminSession)
	_, err = ExtendLicense(context.Background(), nil, "GTO-0000-0000-0000", 30)
	assert.ErrorIs(t, err, ErrNoAdminSession)
	assert.ErrorIs(t, ResetDevice(context.Background(), nil, "GTO-0000-0000-0000"), ErrNoAdminSession)
	assert.ErrorIs(t, DeleteLicense(context.Background(), nil, "GTO-0000-0000-0000"), ErrNoAdminSession)
}

// Full lifecycle: create, bind, reject second device, reset, rebind.
func TestLicenseLifecycleScenario(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	license, err := CreateLicense(context.Background(), testSession, model.CreateLicenseInput{
		Days: 30,
		Tier: 25,
	})
	require.NoError(t, err)
	key := license.LicenseKey

	snapshot, err := Verify(context.Background(), key, "D1", "")
	require.NoError(t, err)
	assert.Equal(t, 25, snapshot.Tier)

	_, err = Verify(context.Background(), key, "D2", "")
	assert.ErrorIs(t, err, model.ErrDeviceMismatch)

	var stored model.License
	require.NoError(t, database.DB.Where("license_key = ?", key).First(&stored).Error)
	assert.Equal(t, "D1", *stored.DeviceID)

	require.NoError(t, ResetDevice(context.Background(), testSession, key))

	_, err = Verify(context.Background(), key, "D2", "")
	require.NoError(t, err)

	require.NoError(t, database.DB.Where("license_key = ?", key).First(&stored).Error)
	assert.Equal(t, "D2", *stored.DeviceID)
}

func TestStatistics(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	seedLicense(t, "GTO-STAT-0000-0001", nil, time.Now().Add(24*time.Hour), true)
	seedLicense(t, "GTO-STAT-0000-0002", nil, time.Now().Add(-24*time.Hour), true)
	seedLicense(t, "GTO-STAT-0000-0003", nil, time.Now().Add(24*time.Hour), false)

	_, err := Verify(context.Background(), "GTO-STAT-0000-0001", "device-1", "")
	require.NoError(t, err)

	stats, err := Statistics(context.Background(), testSession)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalLicenses)
	assert.EqualValues(t, 1, stats.ActiveLicenses)
	assert.EqualValues(t, 2, stats.ExpiredLicenses)
	assert.EqualValues(t, 1, stats.UsedToday)
}
