package models

import (
	"errors"
	"fmt"
	"time"
)

type Mode string

const (
	ModeSingles Mode = "1v1"
	ModeDoubles Mode = "2v2"
)

type MatchStatus string

const (
	StatusPending  MatchStatus = "pending"
	StatusVerified MatchStatus = "verified"
	StatusRejected MatchStatus = "rejected"
)

// Team identifies a side of a match.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// SetScore is one set's final point pair.
type SetScore struct {
	A int `json:"A"`
	B int `json:"B"`
}

var (
	ErrTeamSize      = errors.New("team size does not match mode")
	ErrTeamOverlap   = errors.New("teams must not share players")
	ErrDuplicateSlot = errors.New("a player appears twice on the same team")
	ErrSetCount      = errors.New("a match needs between 2 and 3 sets")
)

type Match struct {
	ID           int         `json:"id" db:"id"`
	GuildID      string      `json:"guild_id" db:"guild_id"`
	Mode         Mode        `json:"mode" db:"mode"`
	TeamA        []string    `json:"team_a" db:"team_a"`
	TeamB        []string    `json:"team_b" db:"team_b"`
	SetScores    []SetScore  `json:"set_scores" db:"set_scores"`
	TargetPoints int         `json:"target_points" db:"target_points"`
	PointsA      int         `json:"points_a" db:"points_a"`
	PointsB      int         `json:"points_b" db:"points_b"`
	Winner       Team        `json:"winner" db:"winner"`
	Reporter     string      `json:"reporter" db:"reporter"`
	Status       MatchStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// NewMatch builds a pending match and enforces roster invariants: team sizes
// match the mode, the rosters are disjoint, and 2-3 sets were reported.
func NewMatch(guildID string, mode Mode, teamA, teamB []string, sets []SetScore, reporter string, targetPoints int) (*Match, error) {
	want := 1
	if mode == ModeDoubles {
		want = 2
	}
	if len(teamA) != want || len(teamB) != want {
		return nil, fmt.Errorf("%w: %s expects %d per side", ErrTeamSize, mode, want)
	}

	seen := make(map[string]struct{}, len(teamA)+len(teamB))
	for _, id := range teamA {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateSlot
		}
		seen[id] = struct{}{}
	}
	for _, id := range teamB {
		if _, dup := seen[id]; dup {
			return nil, ErrTeamOverlap
		}
		seen[id] = struct{}{}
	}

	if len(sets) < 2 || len(sets) > 3 {
		return nil, ErrSetCount
	}

	return &Match{
		GuildID:      guildID,
		Mode:         mode,
		TeamA:        append([]string(nil), teamA...),
		TeamB:        append([]string(nil), teamB...),
		SetScores:    append([]SetScore(nil), sets...),
		TargetPoints: targetPoints,
		Reporter:     reporter,
		Status:       StatusPending,
	}, nil
}

// Participants returns team A then team B, in roster order.
func (m *Match) Participants() []string {
	out := make([]string, 0, len(m.TeamA)+len(m.TeamB))
	out = append(out, m.TeamA...)
	out = append(out, m.TeamB...)
	return out
}

func (m *Match) HasParticipant(userID string) bool {
	return m.SideOf(userID) != ""
}

// SideOf reports which team a participant plays on; empty for non-participants.
func (m *Match) SideOf(userID string) Team {
	for _, id := range m.TeamA {
		if id == userID {
			return TeamA
		}
	}
	for _, id := range m.TeamB {
		if id == userID {
			return TeamB
		}
	}
	return ""
}

func (m *Match) Terminal() bool {
	return m.Status == StatusVerified || m.Status == StatusRejected
}

// Signature is one participant's verification decision on one match.
// A later signature from the same participant overwrites the earlier one.
type Signature struct {
	MatchID    int       `json:"match_id" db:"match_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Decision   Decision  `json:"decision" db:"decision"`
	SignedName string    `json:"signed_name" db:"signed_name"`
	SignedAt   time.Time `json:"signed_at" db:"signed_at"`
}
