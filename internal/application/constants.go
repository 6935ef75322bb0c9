package application

const (
	// History and leaderboard limits
	defaultLeaderboardLimit = 10
	recentMatchesLimit      = 5

	// Fair play agreement
	termsVersion = "1"

	// Persisted settings keys
	settingSheetID = "sheet_id"

	// Google Sheets configuration
	sheetTitle           = "Badminton Ladder"
	sheetsPermissionRole = "writer"

	// Excel report configuration
	excelSheetName = "Leaderboard"
)
