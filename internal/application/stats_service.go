package application

import (
	"database/sql"
	"errors"
	"fmt"

	"featherrank/internal/integration"
	"featherrank/internal/models"
	"featherrank/internal/repository"

	"github.com/xuri/excelize/v2"
)

type StatsServiceImpl struct {
	players  repository.Player
	matches  repository.Match
	verif    repository.Verification
	sheets   *integration.SheetService
	settings Settings
	logger   Logger
}

func NewStatsServiceImpl(repos *repository.Repository, sheets *integration.SheetService, settings Settings, logger Logger) *StatsServiceImpl {
	return &StatsServiceImpl{
		players:  repos.Player,
		matches:  repos.Match,
		verif:    repos.Verification,
		sheets:   sheets,
		settings: settings,
		logger:   logger,
	}
}

// PlayerStats is one player's card: current standing plus recent verified
// matches.
type PlayerStats struct {
	Player models.Player
	Recent []models.Match
}

func (s *StatsServiceImpl) Leaderboard(limit int) ([]models.Player, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	return s.players.Top(limit)
}

func (s *StatsServiceImpl) PlayerStats(userID string) (*PlayerStats, error) {
	p, err := s.players.Get(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	recent, err := s.matches.RecentForUser(userID, recentMatchesLimit)
	if err != nil {
		return nil, err
	}

	return &PlayerStats{Player: *p, Recent: recent}, nil
}

func (s *StatsServiceImpl) GetExcelReport() ([]byte, error) {
	players, err := s.players.All()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.NewSheet(excelSheetName)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rank", "Player", "Rating", "Matches", "Wins", "Losses", "WinRate %"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(excelSheetName, cell, h)
	}

	row := 2
	for i, p := range players {
		f.SetCellValue(excelSheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(excelSheetName, fmt.Sprintf("B%d", row), p.Username)
		f.SetCellValue(excelSheetName, fmt.Sprintf("C%d", row), fmt.Sprintf("%.0f", p.Rating))
		f.SetCellValue(excelSheetName, fmt.Sprintf("D%d", row), p.Matches())
		f.SetCellValue(excelSheetName, fmt.Sprintf("E%d", row), p.Wins)
		f.SetCellValue(excelSheetName, fmt.Sprintf("F%d", row), p.Losses)
		f.SetCellValue(excelSheetName, fmt.Sprintf("G%d", row), fmt.Sprintf("%.1f%%", p.WinRate()))
		row++
	}

	f.SetColWidth(excelSheetName, "A", "A", 6)
	f.SetColWidth(excelSheetName, "B", "B", 24)
	f.SetColWidth(excelSheetName, "C", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SyncToGoogleSheet rewrites the public standings sheet and returns its URL.
// The spreadsheet is created on first use and its ID persisted so later syncs
// reuse it.
func (s *StatsServiceImpl) SyncToGoogleSheet() (string, error) {
	if s.sheets == nil {
		return "", fmt.Errorf("google sheets service is not configured")
	}

	sheetID, err := s.verif.GetSetting(settingSheetID)
	if err != nil {
		return "", err
	}
	s.sheets.SetSpreadsheetID(sheetID)

	id, url, err := s.sheets.EnsureSheetExists(sheetTitle, s.settings.OwnerEmail)
	if err != nil {
		return "", err
	}
	if id != sheetID {
		if err := s.verif.SetSetting(settingSheetID, id); err != nil {
			s.logger.Warn("could not persist spreadsheet id: %v", err)
		}
	}

	players, err := s.players.All()
	if err != nil {
		return "", err
	}

	rows := [][]interface{}{
		{"Rank", "Player", "Rating", "Matches", "Wins", "Losses", "WinRate %"},
	}
	for i, p := range players {
		rows = append(rows, []interface{}{
			i + 1,
			p.Username,
			fmt.Sprintf("%.0f", p.Rating),
			p.Matches(),
			p.Wins,
			p.Losses,
			fmt.Sprintf("%.1f%%", p.WinRate()),
		})
	}

	if err := s.sheets.UpdateStats(rows); err != nil {
		return "", fmt.Errorf("failed to update standings: %w", err)
	}

	return url, nil
}
