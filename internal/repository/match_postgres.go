package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"featherrank/internal/models"
)

type MatchPostgres struct {
	db *sql.DB
}

func NewMatchPostgres(db *sql.DB) *MatchPostgres {
	return &MatchPostgres{db: db}
}

const matchColumns = `id, guild_id, mode, team_a, team_b, set_scores,
	target_points, points_a, points_b, winner, reporter, status, created_at`

func (r *MatchPostgres) CreatePending(match *models.Match) (int, error) {
	scores, err := json.Marshal(match.SetScores)
	if err != nil {
		return 0, fmt.Errorf("failed to encode set scores: %w", err)
	}

	var matchID int
	query := `INSERT INTO matches (guild_id, mode, team_a, team_b, set_scores, target_points, reporter, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending') RETURNING id`
	err = r.db.QueryRow(query,
		match.GuildID, string(match.Mode),
		strings.Join(match.TeamA, ","), strings.Join(match.TeamB, ","),
		scores, match.TargetPoints, match.Reporter,
	).Scan(&matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert match: %w", err)
	}
	return matchID, nil
}

func (r *MatchPostgres) Get(id int) (*models.Match, error) {
	query := "SELECT " + matchColumns + " FROM matches WHERE id = $1"
	return scanMatch(r.db.QueryRow(query, id))
}

func (r *MatchPostgres) UpsertSignature(sig models.Signature) error {
	query := `INSERT INTO match_signatures (match_id, user_id, decision, signed_name, signed_at)
	          VALUES ($1, $2, $3, $4, NOW())
	          ON CONFLICT (match_id, user_id)
	          DO UPDATE SET decision = EXCLUDED.decision, signed_name = EXCLUDED.signed_name, signed_at = NOW()`
	_, err := r.db.Exec(query, sig.MatchID, sig.UserID, string(sig.Decision), sig.SignedName)
	if err != nil {
		return fmt.Errorf("failed to upsert signature: %w", err)
	}
	return nil
}

func (r *MatchPostgres) Signatures(matchID int) ([]models.Signature, error) {
	query := `SELECT match_id, user_id, decision, signed_name, signed_at
	          FROM match_signatures WHERE match_id = $1 ORDER BY signed_at`
	rows, err := r.db.Query(query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer rows.Close()

	var sigs []models.Signature
	for rows.Next() {
		var s models.Signature
		var decision string
		if err := rows.Scan(&s.MatchID, &s.UserID, &decision, &s.SignedName, &s.SignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		s.Decision = models.Decision(decision)
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}

// SetStatus moves a match from one status to another and reports whether the
// transition actually happened. The conditional update keeps finalization
// at-most-once even if two signers race past the in-process lock.
func (r *MatchPostgres) SetStatus(matchID int, from, to models.MatchStatus) (bool, error) {
	res, err := r.db.Exec("UPDATE matches SET status = $1 WHERE id = $2 AND status = $3",
		string(to), matchID, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update match status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *MatchPostgres) FinalizeScores(matchID int, ptsA, ptsB int, winner models.Team) error {
	query := `UPDATE matches SET points_a = $1, points_b = $2, winner = $3
	          WHERE id = $4 AND status = 'pending'`
	_, err := r.db.Exec(query, ptsA, ptsB, string(winner), matchID)
	if err != nil {
		return fmt.Errorf("failed to finalize match scores: %w", err)
	}
	return nil
}

func (r *MatchPostgres) ListPendingForUser(guildID, userID string) ([]models.Match, error) {
	query := "SELECT " + matchColumns + ` FROM matches
	          WHERE guild_id = $1 AND status = 'pending'
	            AND ',' || team_a || ',' || team_b || ',' LIKE '%,' || $2 || ',%'
	          ORDER BY created_at DESC`
	return r.queryMatches(query, guildID, userID)
}

func (r *MatchPostgres) LatestPendingForUser(guildID, userID string) (*models.Match, error) {
	pending, err := r.ListPendingForUser(guildID, userID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, sql.ErrNoRows
	}
	return &pending[0], nil
}

func (r *MatchPostgres) RecentForUser(userID string, limit int) ([]models.Match, error) {
	query := "SELECT " + matchColumns + ` FROM matches
	          WHERE status = 'verified'
	            AND ',' || team_a || ',' || team_b || ',' LIKE '%,' || $1 || ',%'
	          ORDER BY created_at DESC LIMIT $2`
	return r.queryMatches(query, userID, limit)
}

func (r *MatchPostgres) CountByStatus(guildID string) (map[models.MatchStatus]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM matches WHERE guild_id = $1 GROUP BY status", guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.MatchStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan match count: %w", err)
		}
		counts[models.MatchStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *MatchPostgres) queryMatches(query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var mode, teamA, teamB, status string
	var winner sql.NullString
	var scores []byte
	err := row.Scan(&m.ID, &m.GuildID, &mode, &teamA, &teamB, &scores,
		&m.TargetPoints, &m.PointsA, &m.PointsB, &winner, &m.Reporter, &status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Mode = models.Mode(mode)
	m.TeamA = splitRoster(teamA)
	m.TeamB = splitRoster(teamB)
	m.Status = models.MatchStatus(status)
	if winner.Valid {
		m.Winner = models.Team(winner.String)
	}
	if err := json.Unmarshal(scores, &m.SetScores); err != nil {
		return nil, fmt.Errorf("failed to decode set scores: %w", err)
	}
	return &m, nil
}

func splitRoster(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}
