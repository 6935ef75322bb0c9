package integration

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetService publishes the ladder standings to a Google spreadsheet that
// anyone in the community can read.
type SheetService struct {
	sheetsSr *sheets.Service
	driveSr  *drive.Service
	sheetID  string
}

func NewSheetService(credJSON string) (*SheetService, error) {
	ctx := context.Background()

	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credJSON))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Sheets client: %w", err)
	}

	drv, err := drive.NewService(ctx, option.WithCredentialsFile(credJSON))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &SheetService{
		sheetsSr: srv,
		driveSr:  drv,
	}, nil
}

// SetSpreadsheetID points the service at an already created spreadsheet.
func (s *SheetService) SetSpreadsheetID(id string) {
	s.sheetID = id
}

// EnsureSheetExists creates the standings spreadsheet on first use, grants
// the configured owner write access and makes it world-readable.
func (s *SheetService) EnsureSheetExists(title, ownerEmail string) (string, string, error) {
	if s.sheetID != "" {
		return s.sheetID, fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", s.sheetID), nil
	}

	resp, err := s.sheetsSr.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: title,
		},
	}).Do()
	if err != nil {
		return "", "", err
	}
	s.sheetID = resp.SpreadsheetId
	url := resp.SpreadsheetUrl

	if ownerEmail != "" {
		_, err = s.driveSr.Permissions.Create(s.sheetID, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: ownerEmail,
		}).Do()
		if err != nil {
			return "", "", fmt.Errorf("failed to add owner: %w", err)
		}
	}

	_, err = s.driveSr.Permissions.Create(s.sheetID, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to make public: %w", err)
	}

	return s.sheetID, url, nil
}

func (s *SheetService) UpdateStats(data [][]interface{}) error {
	if s.sheetID == "" {
		return fmt.Errorf("sheet not initialized")
	}

	_, err := s.sheetsSr.Spreadsheets.Values.Clear(s.sheetID, "A1:Z1000", &sheets.ClearValuesRequest{}).Do()
	if err != nil {
		return err
	}

	valRange := &sheets.ValueRange{
		Values: data,
	}
	_, err = s.sheetsSr.Spreadsheets.Values.Update(s.sheetID, "A1", valRange).ValueInputOption("RAW").Do()

	return err
}
