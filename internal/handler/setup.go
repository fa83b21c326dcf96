package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"license-key-server/internal/config"
	"license-key-server/internal/service"
)

var (
	tokens        *service.TokenService
	sheetSync     *service.SheetSyncService
	validate      = validator.New()
	sessionSecret []byte
	sessionTTL    time.Duration
	adminPassword []byte
)

// Setup wires handler package state from configuration: the token service,
// the admin password hash, and the optional sheet sync.
func Setup(cfg *config.Config) error {
	tokens = &service.TokenService{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
	}
	// Session tokens are signed with their own secret so a client license
	// token can never pass the admin gate, whatever its claims say.
	sessionSecret = []byte(cfg.SessionSecret)
	sessionTTL = cfg.SessionTTL

	// The password arrives in plain text from the environment; only its
	// bcrypt hash is held in memory afterwards.
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	adminPassword = hash

	sync, err := service.NewSheetSyncService(cfg.SheetSyncEnabled, cfg.SheetCredentials, cfg.SheetSpreadsheetID, cfg.SheetName)
	if err != nil {
		return err
	}
	sheetSync = sync
	return nil
}
