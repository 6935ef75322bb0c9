// Package telegram is an optional announcement mirror: verified and rejected
// matches are posted to a configured chat, and /top answers with the ladder.
package telegram

import (
	"fmt"
	"strings"

	"featherrank/internal/application"
	"featherrank/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	bot    *tgbotapi.BotAPI
	stats  application.StatsService
	logger application.Logger
	chatID int64
}

func NewBot(token string, chatID int64, stats application.StatsService, logger application.Logger) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram bot authorized on account %s", bot.Self.UserName)

	return &Bot{
		bot:    bot,
		stats:  stats,
		logger: logger,
		chatID: chatID,
	}, nil
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		switch update.Message.Command() {
		case "top":
			b.handleTop(update.Message.Chat.ID)
		case "start", "help":
			b.reply(update.Message.Chat.ID,
				"I announce verified badminton matches here. Use /top for the current ladder.")
		}
	}
}

func (b *Bot) Stop() {
	b.bot.StopReceivingUpdates()
}

// AnnounceResult implements the Discord bot's Announcer hook.
func (b *Bot) AnnounceResult(match *models.Match, status models.MatchStatus) {
	if b.chatID == 0 {
		return
	}

	var text string
	if status == models.StatusVerified {
		text = fmt.Sprintf("🏸 Match #%d verified: team %s wins %d-%d on points.",
			match.ID, match.Winner, match.PointsA, match.PointsB)
	} else {
		text = fmt.Sprintf("🏸 Match #%d was rejected and will not be rated.", match.ID)
	}

	b.reply(b.chatID, text)
}

func (b *Bot) handleTop(chatID int64) {
	players, err := b.stats.Leaderboard(0)
	if err != nil {
		b.logger.Error("telegram leaderboard failed: %v", err)
		b.reply(chatID, "Could not load the ladder, try again later.")
		return
	}
	if len(players) == 0 {
		b.reply(chatID, "No rated players yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Badminton ladder:\n")
	for i, p := range players {
		sb.WriteString(fmt.Sprintf("%d. %s — %.0f (%dW-%dL)\n", i+1, p.Username, p.Rating, p.Wins, p.Losses))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("telegram send failed: %v", err)
	}
}
