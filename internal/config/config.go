package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is loaded from the environment with the LICENSE_ prefix.
type Config struct {
	ListenAddr    string        `envconfig:"LISTEN_ADDR" default:":8080"`
	DataDir       string        `envconfig:"DATA_DIR" default:"data"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" required:"true"`
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	SheetSyncEnabled   bool   `envconfig:"SHEET_SYNC_ENABLED" default:"false"`
	SheetCredentials   string `envconfig:"SHEET_CREDENTIALS"`
	SheetSpreadsheetID string `envconfig:"SHEET_SPREADSHEET_ID"`
	SheetName          string `envconfig:"SHEET_NAME" default:"licenses"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("license", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
