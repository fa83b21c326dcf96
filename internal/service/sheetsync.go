package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"license-key-server/internal/model"
)

// SheetSyncService mirrors license rows into a Google Sheet so operators
// can eyeball the stock without the dashboard. The store stays the source
// of truth; the sheet is a one-way export.
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetSyncService(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*SheetSyncService, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("loading sheet credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// SyncLicense upserts one license row, matched by key in column A. Safe to
// call on a nil receiver so callers can fire it unconditionally.
func (s *SheetSyncService) SyncLicense(license *model.License) error {
	if s == nil {
		return nil
	}

	keyResp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A2:A").Do()
	if err != nil {
		zap.S().Errorw("sheet key lookup failed", "error", err)
		return err
	}

	rowIndex := 0
	for i, row := range keyResp.Values {
		if len(row) > 0 && row[0] == license.LicenseKey {
			rowIndex = i + 2 // sheet rows are 1-based and data starts at A2
			break
		}
	}

	values := [][]interface{}{licenseRow(license)}

	if rowIndex > 0 {
		rangeData := fmt.Sprintf("%s!A%d:J%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rangeData,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:J",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}

	if err != nil {
		zap.S().Errorw("sheet sync failed", "license_key", license.LicenseKey, "error", err)
		return err
	}
	return nil
}

// BatchSyncLicenses appends all given licenses, used for a one-off export.
func (s *SheetSyncService) BatchSyncLicenses(licenses []model.License) error {
	if s == nil {
		return nil
	}

	var values [][]interface{}
	for i := range licenses {
		values = append(values, licenseRow(&licenses[i]))
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:J",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		zap.S().Errorw("sheet batch sync failed", "count", len(licenses), "error", err)
	}
	return err
}

func licenseRow(l *model.License) []interface{} {
	deviceID := ""
	if l.DeviceID != nil {
		deviceID = *l.DeviceID
	}
	email := ""
	if l.Email != nil {
		email = *l.Email
	}
	lastUsed := ""
	if l.LastUsedAt != nil {
		lastUsed = l.LastUsedAt.Format(time.RFC3339)
	}
	return []interface{}{
		l.LicenseKey,
		deviceID,
		email,
		l.ExpiresAt.Format(time.RFC3339),
		l.Tier,
		l.Plan,
		l.Active,
		l.CreatedAt.Format(time.RFC3339),
		lastUsed,
		l.Notes,
	}
}
