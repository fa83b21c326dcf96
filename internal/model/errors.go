package model

import "errors"

// Sentinel errors for the license lifecycle. Handlers map these to HTTP
// statuses at the boundary; services never format transport payloads.
var (
	ErrMalformedRequest   = errors.New("license key and device id are required")
	ErrLicenseNotFound    = errors.New("invalid license key")
	ErrLicenseExpired     = errors.New("license has expired")
	ErrLicenseDeactivated = errors.New("license is deactivated")
	ErrDeviceMismatch     = errors.New("license is bound to another device")
	ErrInvalidSignature   = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateKey       = errors.New("license key already exists")
)
