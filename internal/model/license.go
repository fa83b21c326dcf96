package model

import (
	"time"
)

// License is a time-bounded access credential bound to at most one device.
// DeviceID stays NULL until the first successful verification binds it and
// only an admin reset clears it again.
//
// Defaults (tier 25, plan Standard, one device, active) are applied in
// CreateLicense, never via gorm default tags: gorm omits zero-valued fields
// that carry a default tag on Create, so Active:false or Tier:0 would not
// round-trip.
type License struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	LicenseKey string     `json:"license_key" gorm:"uniqueIndex;size:50;not null"`
	DeviceID   *string    `json:"device_id" gorm:"size:100"`
	Email      *string    `json:"email" gorm:"size:255"`
	ExternalID *string    `json:"external_id" gorm:"size:100"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
	Tier       int        `json:"tier"`
	Plan       string     `json:"plan" gorm:"size:50"`
	MaxDevices int        `json:"max_devices"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	Notes      string     `json:"notes"`
}

func (License) TableName() string {
	return "licenses"
}

// Usable reports whether the license can pass verification at t:
// active and not yet expired.
func (l *License) Usable(t time.Time) bool {
	return l.Active && l.ExpiresAt.After(t)
}

// DaysRemaining truncates toward zero, matching what clients display.
func (l *License) DaysRemaining(t time.Time) int {
	if !l.ExpiresAt.After(t) {
		return 0
	}
	return int(l.ExpiresAt.Sub(t).Hours() / 24)
}

// LicenseSnapshot is the entitlement view returned to clients after a
// successful verification or token authentication. It is always computed
// from the current stored state, never from token claims.
type LicenseSnapshot struct {
	LicenseKey    string    `json:"license_key"`
	Tier          int       `json:"tier"`
	Plan          string    `json:"plan"`
	ExternalID    string    `json:"external_id,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
	DaysRemaining int       `json:"days_remaining"`
}

// Snapshot builds the client-facing view of the license at time t.
func (l *License) Snapshot(t time.Time) *LicenseSnapshot {
	s := &LicenseSnapshot{
		LicenseKey:    l.LicenseKey,
		Tier:          l.Tier,
		Plan:          l.Plan,
		ExpiresAt:     l.ExpiresAt,
		DaysRemaining: l.DaysRemaining(t),
	}
	if l.ExternalID != nil {
		s.ExternalID = *l.ExternalID
	}
	return s
}
