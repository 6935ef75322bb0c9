package repository

import (
	"database/sql"

	"featherrank/internal/models"
)

type Match interface {
	CreatePending(match *models.Match) (int, error)
	Get(id int) (*models.Match, error)
	UpsertSignature(sig models.Signature) error
	Signatures(matchID int) ([]models.Signature, error)
	SetStatus(matchID int, from, to models.MatchStatus) (bool, error)
	FinalizeScores(matchID int, ptsA, ptsB int, winner models.Team) error
	ListPendingForUser(guildID, userID string) ([]models.Match, error)
	LatestPendingForUser(guildID, userID string) (*models.Match, error)
	RecentForUser(userID string, limit int) ([]models.Match, error)
	CountByStatus(guildID string) (map[models.MatchStatus]int, error)
}

type Player interface {
	GetOrCreate(id, username string, baseRating float64) (*models.Player, error)
	Get(id string) (*models.Player, error)
	UpdateRating(id string, rating float64, won bool) error
	Rename(id, username string) error
	Top(limit int) ([]models.Player, error)
	All() ([]models.Player, error)
}

type Verification interface {
	RecordMessage(msg models.VerificationMessage) error
	GetMessage(messageID string) (*models.VerificationMessage, error)
	DeleteMessagesForMatch(matchID int) error

	AcceptTerms(acc models.TermsAcceptance) error
	GetTerms(userID string) (*models.TermsAcceptance, error)

	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

type Repository struct {
	Match
	Player
	Verification
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Match:        NewMatchPostgres(db),
		Player:       NewPlayerPostgres(db),
		Verification: NewVerificationPostgres(db),
		db:           db,
	}
}
