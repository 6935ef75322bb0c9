package repository

import (
	"database/sql"
	"fmt"

	"featherrank/internal/models"
)

type PlayerPostgres struct {
	db *sql.DB
}

func NewPlayerPostgres(db *sql.DB) *PlayerPostgres {
	return &PlayerPostgres{db: db}
}

func (r *PlayerPostgres) GetOrCreate(id, username string, baseRating float64) (*models.Player, error) {
	query := `INSERT INTO players (discord_id, username, rating)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (discord_id) DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()
	          RETURNING discord_id, username, rating, wins, losses, created_at, updated_at`
	var p models.Player
	err := r.db.QueryRow(query, id, username, baseRating).
		Scan(&p.ID, &p.Username, &p.Rating, &p.Wins, &p.Losses, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create player: %w", err)
	}
	return &p, nil
}

func (r *PlayerPostgres) Get(id string) (*models.Player, error) {
	query := `SELECT discord_id, username, rating, wins, losses, created_at, updated_at
	          FROM players WHERE discord_id = $1`
	var p models.Player
	err := r.db.QueryRow(query, id).
		Scan(&p.ID, &p.Username, &p.Rating, &p.Wins, &p.Losses, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerPostgres) UpdateRating(id string, rating float64, won bool) error {
	query := `UPDATE players SET rating = $1,
	          wins = wins + CASE WHEN $2 THEN 1 ELSE 0 END,
	          losses = losses + CASE WHEN $2 THEN 0 ELSE 1 END,
	          updated_at = NOW()
	          WHERE discord_id = $3`
	res, err := r.db.Exec(query, rating, won, id)
	if err != nil {
		return fmt.Errorf("failed to update player rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PlayerPostgres) Rename(id, username string) error {
	_, err := r.db.Exec("UPDATE players SET username = $1, updated_at = NOW() WHERE discord_id = $2", username, id)
	if err != nil {
		return fmt.Errorf("failed to rename player: %w", err)
	}
	return nil
}

func (r *PlayerPostgres) Top(limit int) ([]models.Player, error) {
	query := `SELECT discord_id, username, rating, wins, losses, created_at, updated_at
	          FROM players WHERE wins + losses > 0 ORDER BY rating DESC LIMIT $1`
	return r.queryPlayers(query, limit)
}

func (r *PlayerPostgres) All() ([]models.Player, error) {
	query := `SELECT discord_id, username, rating, wins, losses, created_at, updated_at
	          FROM players ORDER BY rating DESC`
	return r.queryPlayers(query)
}

func (r *PlayerPostgres) queryPlayers(query string, args ...interface{}) ([]models.Player, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.Rating, &p.Wins, &p.Losses, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
