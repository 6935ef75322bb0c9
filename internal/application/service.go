package application

import (
	"featherrank/internal/integration"
	"featherrank/internal/models"
	"featherrank/internal/repository"
)

// AIProvider turns a scoreboard photo into reported set scores.
type AIProvider interface {
	ParseScoreboard(data []byte) ([]models.SetScore, int, error)
}

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Notifier is how the lifecycle engine reaches players. Implemented by the
// Discord delivery layer and attached after construction; all calls are
// best-effort and never affect match state.
type Notifier interface {
	NotifyPendingMatch(match *models.Match)
	NotifyMatchResolved(match *models.Match, status models.MatchStatus)
}

// Settings are the rating and verification knobs, loaded from config.
type Settings struct {
	KFactor     float64
	BaseRating  float64
	WinBy       int
	GuestUserID string
	OwnerEmail  string
}

type SubmitRequest struct {
	GuildID      string
	Mode         models.Mode
	TeamA        []string
	TeamB        []string
	Names        map[string]string
	Sets         []models.SetScore
	Reporter     string
	TargetPoints int
}

type MatchService interface {
	SubmitMatch(req SubmitRequest) (int, error)
	SignMatch(matchID int, userID string, decision models.Decision, signedName string) (models.MatchStatus, error)
	Match(id int) (*models.Match, error)
	PendingForUser(guildID, userID string) ([]models.Match, error)
	LatestPendingForUser(guildID, userID string) (*models.Match, error)
	VerifiersFor(match *models.Match) []string
	RecordVerificationPrompt(msg models.VerificationMessage) error
	VerificationPrompt(messageID string) (*models.VerificationMessage, error)
	AcceptTerms(userID, signedName string) error
	HasAcceptedTerms(userID string) (bool, error)
	AttachNotifier(n Notifier)
}

type StatsService interface {
	Leaderboard(limit int) ([]models.Player, error)
	PlayerStats(userID string) (*PlayerStats, error)
	GetExcelReport() ([]byte, error)
	SyncToGoogleSheet() (string, error)
}

type Service struct {
	Match MatchService
	Stats StatsService
}

func NewService(repos *repository.Repository, sheets *integration.SheetService, settings Settings, logger Logger) *Service {
	return &Service{
		Match: NewMatchServiceImpl(repos, settings, logger),
		Stats: NewStatsServiceImpl(repos, sheets, settings, logger),
	}
}
