package models

import "time"

// VerificationMessage maps a DM (or channel) prompt message to the match and
// recipient it was sent for, so reaction events can be routed back.
type VerificationMessage struct {
	MessageID string    `json:"message_id" db:"message_id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	GuildID   string    `json:"guild_id" db:"guild_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TermsAcceptance records a user's fair-play agreement and the display name
// they chose to sign with.
type TermsAcceptance struct {
	UserID     string    `json:"user_id" db:"user_id"`
	AcceptedAt time.Time `json:"accepted_at" db:"accepted_at"`
	Version    string    `json:"version" db:"version"`
	SignedName string    `json:"signed_name" db:"signed_name"`
}
