package model

// CreateLicenseInput is the admin payload for minting a new license.
type CreateLicenseInput struct {
	Days       int    `json:"days" validate:"required,min=1,max=3650"`
	Tier       int    `json:"tier" validate:"min=0,max=1000"`
	Plan       string `json:"plan" validate:"omitempty,oneof=Standard Elevated Pro"`
	MaxDevices int    `json:"max_devices" validate:"min=0,max=10"`
	Email      string `json:"email" validate:"omitempty,email"`
	ExternalID string `json:"external_id" validate:"omitempty,max=100"`
	Notes      string `json:"notes" validate:"max=2000"`
}
