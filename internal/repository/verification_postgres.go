package repository

import (
	"database/sql"
	"fmt"

	"featherrank/internal/models"
)

type VerificationPostgres struct {
	db *sql.DB
}

func NewVerificationPostgres(db *sql.DB) *VerificationPostgres {
	return &VerificationPostgres{db: db}
}

func (r *VerificationPostgres) RecordMessage(msg models.VerificationMessage) error {
	query := `INSERT INTO verification_messages (message_id, channel_id, match_id, guild_id, user_id)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (message_id) DO NOTHING`
	_, err := r.db.Exec(query, msg.MessageID, msg.ChannelID, msg.MatchID, msg.GuildID, msg.UserID)
	if err != nil {
		return fmt.Errorf("failed to record verification message: %w", err)
	}
	return nil
}

func (r *VerificationPostgres) GetMessage(messageID string) (*models.VerificationMessage, error) {
	query := `SELECT message_id, channel_id, match_id, guild_id, user_id, created_at
	          FROM verification_messages WHERE message_id = $1`
	var m models.VerificationMessage
	err := r.db.QueryRow(query, messageID).
		Scan(&m.MessageID, &m.ChannelID, &m.MatchID, &m.GuildID, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *VerificationPostgres) DeleteMessagesForMatch(matchID int) error {
	_, err := r.db.Exec("DELETE FROM verification_messages WHERE match_id = $1", matchID)
	if err != nil {
		return fmt.Errorf("failed to delete verification messages: %w", err)
	}
	return nil
}

func (r *VerificationPostgres) AcceptTerms(acc models.TermsAcceptance) error {
	query := `INSERT INTO tos_acceptances (user_id, version, signed_name, accepted_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (user_id)
	          DO UPDATE SET version = EXCLUDED.version, signed_name = EXCLUDED.signed_name, accepted_at = NOW()`
	_, err := r.db.Exec(query, acc.UserID, acc.Version, acc.SignedName)
	if err != nil {
		return fmt.Errorf("failed to record terms acceptance: %w", err)
	}
	return nil
}

func (r *VerificationPostgres) GetTerms(userID string) (*models.TermsAcceptance, error) {
	query := `SELECT user_id, version, signed_name, accepted_at FROM tos_acceptances WHERE user_id = $1`
	var a models.TermsAcceptance
	err := r.db.QueryRow(query, userID).Scan(&a.UserID, &a.Version, &a.SignedName, &a.AcceptedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *VerificationPostgres) GetSetting(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM bot_settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *VerificationPostgres) SetSetting(key, value string) error {
	query := `INSERT INTO bot_settings (key, value) VALUES ($1, $2)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := r.db.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
