package model

import "time"

// UsageStat records one successful verification. Append-only; feeds
// last-used display and the daily distinct-license count.
type UsageStat struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	LicenseKey string    `json:"license_key" gorm:"size:50;index;not null"`
	DeviceID   string    `json:"device_id" gorm:"size:100"`
	IPAddress  string    `json:"ip_address" gorm:"size:50"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}

func (UsageStat) TableName() string {
	return "usage_stats"
}
