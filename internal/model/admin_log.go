package model

import "time"

// AdminLog is an append-only record of an administrative action. Rows are
// never updated or deleted, even when the license they reference is gone.
type AdminLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Action    string    `json:"action" gorm:"size:255;not null"`
	TargetKey *string   `json:"target_key" gorm:"size:50;index"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

// Audit action kinds.
const (
	ActionCreateLicense     = "create_license"
	ActionExtendLicense     = "extend_license"
	ActionResetDevice       = "reset_device"
	ActionDeactivateLicense = "deactivate_license"
	ActionReactivateLicense = "reactivate_license"
	ActionDeleteLicense     = "delete_license"
	ActionAdminLogin        = "admin_login"
	ActionAdminLoginFailed  = "admin_login_failed"
)
