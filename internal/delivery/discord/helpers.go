package discord

import (
	"fmt"
	"strings"

	"featherrank/internal/models"

	"github.com/bwmarrin/discordgo"
)

func mention(userID string) string {
	return "<@" + userID + ">"
}

func mentionAll(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = mention(id)
	}
	return strings.Join(out, " & ")
}

// interactionUser works for both guild and DM interactions.
func interactionUser(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func formatSets(sets []models.SetScore) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%d-%d", s.A, s.B)
	}
	return strings.Join(parts, ", ")
}

func matchSummary(m *models.Match) string {
	return fmt.Sprintf("Match **#%d** (%s, to %d): %s vs %s\nSets: %s\nReported by %s",
		m.ID, m.Mode, m.TargetPoints,
		mentionAll(m.TeamA), mentionAll(m.TeamB),
		formatSets(m.SetScores), mention(m.Reporter))
}

func getMedalEmoji(position int) string {
	switch position {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return "▪️"
	}
}

func truncateMessage(msg string) string {
	if len(msg) > maxMessageLength {
		return msg[:maxMessageLength-10] + "..."
	}
	return msg
}
