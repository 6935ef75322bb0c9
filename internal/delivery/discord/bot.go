package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"featherrank/internal/application"
	"featherrank/internal/models"
	"featherrank/pkg/config"

	"github.com/bwmarrin/discordgo"
)

// Announcer mirrors resolved matches to a second channel, e.g. Telegram.
type Announcer interface {
	AnnounceResult(match *models.Match, status models.MatchStatus)
}

type Bot struct {
	session  *discordgo.Session
	services *application.Service
	ai       application.AIProvider
	logger   application.Logger

	sessions  *sessionStore
	announcer Announcer

	adminIDs         map[string]struct{}
	allowedChannelID string
}

func NewBot(cfg *config.Config, services *application.Service, ai application.AIProvider, logger application.Logger) *Bot {
	s, _ := discordgo.New("Bot " + cfg.DiscordToken)

	admins := make(map[string]struct{})
	for _, id := range cfg.AdminUserIDs {
		cleanID := strings.TrimSpace(id)
		if cleanID != "" {
			admins[cleanID] = struct{}{}
		}
	}

	return &Bot{
		session:          s,
		services:         services,
		ai:               ai,
		logger:           logger,
		sessions:         newSessionStore(),
		adminIDs:         admins,
		allowedChannelID: cfg.AllowedChannelID,
	}
}

// AttachAnnouncer adds an optional secondary announce channel.
func (b *Bot) AttachAnnouncer(a Announcer) {
	b.announcer = a
}

func (b *Bot) Init() error {
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)
	b.session.AddHandler(b.onReactionAdd)
	b.session.Identify.Intents |= discordgo.IntentsGuildMessageReactions | discordgo.IntentsDirectMessageReactions
	return nil
}

func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return err
	}

	b.logger.Info("Discord bot started. Registering slash commands...")

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands)
	if err != nil {
		b.logger.Error("Failed to register commands: %v", err)
	} else {
		b.logger.Info("Slash commands registered successfully")
	}

	return nil
}

func (b *Bot) Stop() {
	b.session.Close()
}

// NotifyPendingMatch DMs every participant whose signature is still needed,
// with reactions wired up as an approve/reject shortcut.
func (b *Bot) NotifyPendingMatch(match *models.Match) {
	prompt := matchSummary(match) +
		fmt.Sprintf("\n\nReact %s to approve or %s to reject, or use `/verify match_id:%d`.",
			emojiApprove, emojiReject, match.ID)

	for _, userID := range b.services.Match.VerifiersFor(match) {
		ch, err := b.session.UserChannelCreate(userID)
		if err != nil {
			b.logger.Warn("could not open DM with %s: %v", userID, err)
			continue
		}
		msg, err := b.session.ChannelMessageSend(ch.ID, prompt)
		if err != nil {
			b.logger.Warn("could not DM %s about match %d: %v", userID, match.ID, err)
			continue
		}

		for _, emoji := range []string{emojiApprove, emojiReject} {
			if err := b.session.MessageReactionAdd(ch.ID, msg.ID, emoji); err != nil {
				b.logger.Debug("could not pre-add reaction on %s: %v", msg.ID, err)
			}
		}

		err = b.services.Match.RecordVerificationPrompt(models.VerificationMessage{
			MessageID: msg.ID,
			ChannelID: ch.ID,
			MatchID:   match.ID,
			GuildID:   match.GuildID,
			UserID:    userID,
		})
		if err != nil {
			b.logger.Error("could not record verification prompt: %v", err)
		}
	}
}

// NotifyMatchResolved announces the verdict in the community channel.
func (b *Bot) NotifyMatchResolved(match *models.Match, status models.MatchStatus) {
	if b.announcer != nil {
		b.announcer.AnnounceResult(match, status)
	}
	if b.allowedChannelID == "" {
		return
	}

	var embed *discordgo.MessageEmbed
	if status == models.StatusVerified {
		winners, losers := match.TeamA, match.TeamB
		if match.Winner == models.TeamB {
			winners, losers = match.TeamB, match.TeamA
		}
		embed = &discordgo.MessageEmbed{
			Title: fmt.Sprintf("Match #%d verified", match.ID),
			Description: fmt.Sprintf("%s defeat %s\nSets: %s (%d-%d on points)",
				mentionAll(winners), mentionAll(losers),
				formatSets(match.SetScores), match.PointsA, match.PointsB),
			Color: colorGreen,
		}
	} else {
		embed = &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Match #%d rejected", match.ID),
			Description: "The reported result was disputed and will not be rated.",
			Color:       colorRed,
		}
	}

	if _, err := b.session.ChannelMessageSendEmbed(b.allowedChannelID, embed); err != nil {
		b.logger.Warn("could not announce match %d: %v", match.ID, err)
	}
}

// onReactionAdd turns ✅/❌ on a recorded verification DM into a signature.
func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}

	prompt, err := b.services.Match.VerificationPrompt(r.MessageID)
	if err != nil {
		b.logger.Error("verification prompt lookup failed: %v", err)
		return
	}
	if prompt == nil || prompt.UserID != r.UserID {
		return
	}

	var decision models.Decision
	switch r.Emoji.Name {
	case emojiApprove:
		decision = models.DecisionApprove
	case emojiReject:
		decision = models.DecisionReject
	default:
		return
	}

	status, err := b.services.Match.SignMatch(prompt.MatchID, r.UserID, decision, "")
	if err != nil {
		s.ChannelMessageSend(prompt.ChannelID, verifyErrorMessage(prompt.MatchID, err))
		return
	}
	s.ChannelMessageSend(prompt.ChannelID, verifyStatusMessage(prompt.MatchID, status))
}

// onMessage feeds scoreboard photos in the community channel into the same
// reporting pipeline as the slash commands. The posted photo must mention
// the full roster: team A first, then team B.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || b.ai == nil {
		return
	}
	if b.allowedChannelID == "" || m.ChannelID != b.allowedChannelID {
		return
	}
	if len(m.Attachments) == 0 {
		return
	}
	if len(m.Mentions) != 2 && len(m.Mentions) != 4 {
		return
	}

	filename := strings.ToLower(m.Attachments[0].Filename)
	if !strings.HasSuffix(filename, ".png") && !strings.HasSuffix(filename, ".jpg") && !strings.HasSuffix(filename, ".jpeg") {
		return
	}

	s.ChannelTyping(m.ChannelID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(m.Attachments[0].URL)
	if err != nil {
		b.logger.Error("failed to download scoreboard photo: %v", err)
		s.ChannelMessageSend(m.ChannelID, "Could not download the photo, try again.")
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		b.logger.Error("failed to read scoreboard photo: %v", err)
		return
	}

	sets, target, err := b.ai.ParseScoreboard(data)
	if err != nil {
		b.logger.Error("scoreboard analysis failed: %v", err)
		s.ChannelMessageSend(m.ChannelID, "Could not read the scoreboard: "+err.Error())
		return
	}

	mode := models.ModeSingles
	half := 1
	if len(m.Mentions) == 4 {
		mode = models.ModeDoubles
		half = 2
	}
	var teamA, teamB []string
	names := make(map[string]string, len(m.Mentions))
	for idx, u := range m.Mentions {
		if idx < half {
			teamA = append(teamA, u.ID)
		} else {
			teamB = append(teamB, u.ID)
		}
		names[u.ID] = u.Username
	}

	matchID, err := b.services.Match.SubmitMatch(application.SubmitRequest{
		GuildID:      m.GuildID,
		Mode:         mode,
		TeamA:        teamA,
		TeamB:        teamB,
		Names:        names,
		Sets:         sets,
		Reporter:     m.Author.ID,
		TargetPoints: target,
	})
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "That result does not score: "+err.Error())
		return
	}

	s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("Read sets %s from the photo. Match **#%d** recorded as pending, awaiting verification.",
			formatSets(sets), matchID))
}
