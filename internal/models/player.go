package models

import "time"

// Player is a rated community member. Created lazily on first match
// involvement; the rating only moves when a match is verified.
type Player struct {
	ID        string    `json:"id" db:"discord_id"`
	Username  string    `json:"username" db:"username"`
	Rating    float64   `json:"rating" db:"rating"`
	Wins      int       `json:"wins" db:"wins"`
	Losses    int       `json:"losses" db:"losses"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p *Player) Matches() int {
	return p.Wins + p.Losses
}

func (p *Player) WinRate() float64 {
	if p.Matches() == 0 {
		return 0.0
	}
	return float64(p.Wins) / float64(p.Matches()) * 100
}
