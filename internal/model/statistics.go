package model

// LicenseStatistics is the dashboard summary: stock counts plus the number
// of distinct licenses seen today.
type LicenseStatistics struct {
	TotalLicenses   int64 `json:"total_licenses"`
	ActiveLicenses  int64 `json:"active_licenses"`
	ExpiredLicenses int64 `json:"expired_licenses"`
	UsedToday       int64 `json:"used_today"`
}
