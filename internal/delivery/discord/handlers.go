package discord

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"featherrank/internal/application"
	"featherrank/internal/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		b.onComponent(s, i)
		return
	case discordgo.InteractionApplicationCommand:
	default:
		return
	}

	name := i.ApplicationCommandData().Name

	switch name {
	case "ping":
		b.respondMessage(s, i.Interaction, "pong", false)
	case "agree_tos":
		b.handleAgreeTos(s, i.Interaction)
	case "match_singles":
		b.handleMatchSingles(s, i.Interaction)
	case "match_doubles":
		b.handleMatchDoubles(s, i.Interaction)
	case "verify":
		b.handleVerify(s, i.Interaction)
	case "pending":
		b.handlePending(s, i.Interaction)
	case "leaderboard":
		b.handleLeaderboard(s, i.Interaction)
	case "stats":
		b.handleStats(s, i.Interaction)
	case "export":
		b.ensureAdmin(s, i.Interaction, b.handleExport)
	case "sync_sheet":
		b.ensureAdmin(s, i.Interaction, b.handleSyncSheet)
	}
}

func optionMap(i *discordgo.Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// resolvedUser pulls the mentioned user out of the interaction's resolved
// data without another API round trip.
func resolvedUser(i *discordgo.Interaction, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.User {
	id, _ := opt.Value.(string)
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if u, ok := resolved.Users[id]; ok {
			return u
		}
	}
	return &discordgo.User{ID: id}
}

func (b *Bot) handleAgreeTos(s *discordgo.Session, i *discordgo.Interaction) {
	opts := optionMap(i)
	name := strings.TrimSpace(opts["name"].StringValue())
	if name == "" {
		b.respondMessage(s, i, "Please provide a non-empty name.", true)
		return
	}

	if err := b.services.Match.AcceptTerms(interactionUser(i), name); err != nil {
		b.logger.Error("terms acceptance failed: %v", err)
		b.respondMessage(s, i, "Could not record your agreement, try again.", true)
		return
	}
	b.respondMessage(s, i, fmt.Sprintf("Thanks **%s**, you are all set. Report matches with `/match_singles` or `/match_doubles`.", name), true)
}

func (b *Bot) handleMatchSingles(s *discordgo.Session, i *discordgo.Interaction) {
	if !b.requireTerms(s, i) {
		return
	}
	opts := optionMap(i)
	a := resolvedUser(i, opts["a"])
	bb := resolvedUser(i, opts["b"])
	target := 21
	if opt, ok := opts["target"]; ok {
		target = int(opt.IntValue())
	}

	b.startScoreEntry(s, i, models.ModeSingles,
		[]string{a.ID}, []string{bb.ID},
		map[string]string{a.ID: a.Username, bb.ID: bb.Username},
		target)
}

func (b *Bot) handleMatchDoubles(s *discordgo.Session, i *discordgo.Interaction) {
	if !b.requireTerms(s, i) {
		return
	}
	opts := optionMap(i)
	a1 := resolvedUser(i, opts["a1"])
	a2 := resolvedUser(i, opts["a2"])
	b1 := resolvedUser(i, opts["b1"])
	b2 := resolvedUser(i, opts["b2"])
	target := 21
	if opt, ok := opts["target"]; ok {
		target = int(opt.IntValue())
	}

	names := map[string]string{
		a1.ID: a1.Username, a2.ID: a2.Username,
		b1.ID: b1.Username, b2.ID: b2.Username,
	}
	b.startScoreEntry(s, i, models.ModeDoubles,
		[]string{a1.ID, a2.ID}, []string{b1.ID, b2.ID}, names, target)
}

func (b *Bot) startScoreEntry(s *discordgo.Session, i *discordgo.Interaction, mode models.Mode, teamA, teamB []string, names map[string]string, target int) {
	reporter := interactionUser(i)

	// Roster mistakes surface now, not after picking three scores.
	if _, err := models.NewMatch(i.GuildID, mode, teamA, teamB,
		[]models.SetScore{{A: target, B: 0}, {A: target, B: 0}}, reporter, target); err != nil {
		b.respondMessage(s, i, "Bad rosters: "+err.Error(), true)
		return
	}

	sess := newReportSession(i.GuildID, mode, teamA, teamB, names, reporter, target)
	b.sessions.put(reporter, sess)

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    sess.prompt(),
			Components: sess.standardComponents(),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("score entry respond failed: %v", err)
	}
}

func (b *Bot) handleVerify(s *discordgo.Session, i *discordgo.Interaction) {
	if !b.requireTerms(s, i) {
		return
	}
	opts := optionMap(i)
	userID := interactionUser(i)

	decision := models.Decision(opts["decision"].StringValue())

	signedName := ""
	if opt, ok := opts["name"]; ok {
		signedName = opt.StringValue()
	}

	var matchID int
	if opt, ok := opts["match_id"]; ok {
		matchID = int(opt.IntValue())
	} else {
		latest, err := b.services.Match.LatestPendingForUser(i.GuildID, userID)
		if err != nil {
			if errors.Is(err, application.ErrNoPendingMatches) {
				b.respondMessage(s, i, "No pending matches to verify.", true)
				return
			}
			b.logger.Error("latest pending lookup failed: %v", err)
			b.respondMessage(s, i, "Something went wrong, try again.", true)
			return
		}
		matchID = latest.ID
	}

	status, err := b.services.Match.SignMatch(matchID, userID, decision, signedName)
	if err != nil {
		b.respondMessage(s, i, verifyErrorMessage(matchID, err), true)
		return
	}

	b.respondMessage(s, i, verifyStatusMessage(matchID, status), true)
}

func verifyErrorMessage(matchID int, err error) string {
	switch {
	case errors.Is(err, application.ErrMatchNotFound):
		return fmt.Sprintf("Match ID %d not found.", matchID)
	case errors.Is(err, application.ErrNotAParticipant):
		return "You are not a participant in this match."
	case errors.Is(err, application.ErrSelfVerification):
		return "The reporter cannot verify their own match."
	default:
		return "Verification failed: " + err.Error()
	}
}

func verifyStatusMessage(matchID int, status models.MatchStatus) string {
	switch status {
	case models.StatusVerified:
		return fmt.Sprintf("Match **#%d** is verified. Ratings have been updated.", matchID)
	case models.StatusRejected:
		return fmt.Sprintf("Match **#%d** was rejected and will not be rated.", matchID)
	default:
		return fmt.Sprintf("Your signature on match **#%d** is recorded. Waiting for the other players.", matchID)
	}
}

func (b *Bot) handlePending(s *discordgo.Session, i *discordgo.Interaction) {
	userID := interactionUser(i)
	pending, err := b.services.Match.PendingForUser(i.GuildID, userID)
	if err != nil {
		b.logger.Error("pending lookup failed: %v", err)
		b.respondMessage(s, i, "Something went wrong, try again.", true)
		return
	}

	// Only matches where this user's signature still matters.
	var waiting []models.Match
	for _, m := range pending {
		if m.Reporter != userID {
			waiting = append(waiting, m)
		}
	}
	if len(waiting) == 0 {
		b.respondMessage(s, i, "You have no pending matches to verify!", true)
		return
	}

	var sb strings.Builder
	for _, m := range waiting {
		sb.WriteString(fmt.Sprintf("`#%d` %s vs %s — %s (reported by %s)\n",
			m.ID, mentionAll(m.TeamA), mentionAll(m.TeamB), formatSets(m.SetScores), mention(m.Reporter)))
	}
	sb.WriteString(fmt.Sprintf("\nApprove: `/verify decision:Approve match_id:%d`\nReject: `/verify decision:Reject match_id:%d`",
		waiting[0].ID, waiting[0].ID))

	b.respondMessage(s, i, truncateMessage(sb.String()), true)
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.Interaction) {
	limit := topPlayersLimit
	if opt, ok := optionMap(i)["limit"]; ok {
		limit = int(opt.IntValue())
	}

	players, err := b.services.Stats.Leaderboard(limit)
	if err != nil {
		b.logger.Error("leaderboard failed: %v", err)
		b.respondMessage(s, i, "Something went wrong, try again.", true)
		return
	}
	if len(players) == 0 {
		b.respondMessage(s, i, "No rated players yet. Report a match!", false)
		return
	}

	var sb strings.Builder
	for idx, p := range players {
		sb.WriteString(fmt.Sprintf("%s **%s** — `%.0f` | %dW-%dL (%.0f%%)\n",
			getMedalEmoji(idx), p.Username, p.Rating, p.Wins, p.Losses, p.WinRate()))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Badminton Ladder",
		Description: sb.String(),
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Points-share rating"},
	}
	s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.Interaction) {
	target := interactionUser(i)
	display := ""
	if opt, ok := optionMap(i)["user"]; ok {
		u := resolvedUser(i, opt)
		target = u.ID
		display = u.Username
	}

	stats, err := b.services.Stats.PlayerStats(target)
	if err != nil {
		if errors.Is(err, application.ErrPlayerNotFound) {
			b.respondMessage(s, i, fmt.Sprintf("📊 %s has no games recorded yet.", mention(target)), true)
			return
		}
		b.logger.Error("stats lookup failed: %v", err)
		b.respondMessage(s, i, "Something went wrong, try again.", true)
		return
	}
	if display == "" {
		display = stats.Player.Username
	}

	var recent strings.Builder
	for _, m := range stats.Recent {
		outcome := "✅"
		if m.Winner != m.SideOf(target) {
			outcome = "❌"
		}
		recent.WriteString(fmt.Sprintf("%s `#%d` %s — %s\n",
			outcome, m.ID, formatSets(m.SetScores), m.CreatedAt.Format("02.01")))
	}
	if recent.Len() == 0 {
		recent.WriteString("No verified matches yet.")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Stats: %s", display),
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Rating", Value: fmt.Sprintf("%.0f", stats.Player.Rating), Inline: true},
			{Name: "Record", Value: fmt.Sprintf("%dW-%dL", stats.Player.Wins, stats.Player.Losses), Inline: true},
			{Name: "Win rate", Value: fmt.Sprintf("%.1f%%", stats.Player.WinRate()), Inline: true},
			{Name: "Recent matches", Value: recent.String(), Inline: false},
		},
	}
	s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (b *Bot) handleExport(s *discordgo.Session, i *discordgo.Interaction) {
	s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	data, err := b.services.Stats.GetExcelReport()
	if err != nil {
		b.logger.Error("export error: %v", err)
		content := "Export failed: " + err.Error()
		s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content})
		return
	}

	content := "Your report is ready!"
	s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &content,
		Files: []*discordgo.File{
			{Name: "ladder.xlsx", Reader: bytes.NewReader(data)},
		},
	})
}

func (b *Bot) handleSyncSheet(s *discordgo.Session, i *discordgo.Interaction) {
	s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})

	url, err := b.services.Stats.SyncToGoogleSheet()
	if err != nil {
		content := "Sync failed: " + err.Error()
		s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content})
		return
	}

	content := "Standings published!\n" + url
	s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content})
}
