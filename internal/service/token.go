package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"license-key-server/internal/database"
	"license-key-server/internal/model"
)

// TokenService mints and verifies client access tokens. The token lifetime
// is fixed by configuration and independent of the license expiry, which is
// why Authenticate re-checks the stored license on every call instead of
// trusting the claims.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
}

type licenseClaims struct {
	LicenseKey string `json:"license_key"`
	Nickname   string `json:"nickname"`
	Tier       int    `json:"tier"`
	jwt.RegisteredClaims
}

// Issue mints a signed token for a freshly verified license.
func (s *TokenService) Issue(snapshot *model.LicenseSnapshot) (string, error) {
	now := time.Now()
	claims := licenseClaims{
		LicenseKey: snapshot.LicenseKey,
		Nickname:   displayName(snapshot.LicenseKey),
		Tier:       snapshot.Tier,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Authenticate verifies the token signature and expiry, then re-fetches the
// license and returns a snapshot computed from its current state. Stale
// tier or plan values embedded in the token are never returned, so a tier
// change or deactivation takes effect on the next call.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string) (*model.LicenseSnapshot, error) {
	claims := &licenseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrInvalidSignature
	}
	if !token.Valid || claims.LicenseKey == "" {
		return nil, model.ErrInvalidSignature
	}

	now := time.Now().UTC()

	var license model.License
	err = database.DB.WithContext(ctx).Where("license_key = ?", claims.LicenseKey).First(&license).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrLicenseNotFound
	case err != nil:
		return nil, model.ErrStorageUnavailable
	}
	if !license.Active {
		return nil, model.ErrLicenseDeactivated
	}
	if !license.ExpiresAt.After(now) {
		return nil, model.ErrLicenseExpired
	}

	return license.Snapshot(now), nil
}

// displayName derives a stable pseudonymous identity from the key, shown in
// place of a real username.
func displayName(licenseKey string) string {
	return strings.ReplaceAll(licenseKey, "-", "")
}
