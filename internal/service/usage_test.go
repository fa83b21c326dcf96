package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
)

func TestDistinctLicensesTodayCountsKeysOnce(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	RecordUsage(context.Background(), "GTO-USAG-E000-0001", "device-1", "1.1.1.1")
	RecordUsage(context.Background(), "GTO-USAG-E000-0001", "device-1", "1.1.1.1")
	RecordUsage(context.Background(), "GTO-USAG-E000-0002", "device-2", "2.2.2.2")

	// Yesterday's row must not count.
	old := &model.UsageStat{
		LicenseKey: "GTO-USAG-E000-0003",
		DeviceID:   "device-3",
		Timestamp:  time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, database.DB.Create(old).Error)

	count, err := DistinctLicensesToday(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestRecentUsageOrderAndLimit(t *testing.T) {
	database.InitTestDB()
	defer database.CleanTestDB()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		stat := &model.UsageStat{
			LicenseKey: "GTO-USAG-E000-0004",
			DeviceID:   "device-1",
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, database.DB.Create(stat).Error)
	}

	stats, err := RecentUsage(context.Background(), "GTO-USAG-E000-0004", 3)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.True(t, stats[0].Timestamp.After(stats[1].Timestamp))
	assert.True(t, stats[1].Timestamp.After(stats[2].Timestamp))
}
