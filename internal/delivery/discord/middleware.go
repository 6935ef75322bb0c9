package discord

import (
	"github.com/bwmarrin/discordgo"
)

func (b *Bot) isAdmin(userID string) bool {
	_, ok := b.adminIDs[userID]
	return ok
}

func (b *Bot) respondMessage(s *discordgo.Session, i *discordgo.Interaction, msg string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   flags,
		},
	})
}

func (b *Bot) ensureAdmin(s *discordgo.Session, i *discordgo.Interaction, handler func(*discordgo.Session, *discordgo.Interaction)) {
	if !b.isAdmin(interactionUser(i)) {
		b.respondMessage(s, i, "You do not have permission to do that.", true)
		return
	}
	handler(s, i)
}

// requireTerms gates reporting and verifying behind the fair play agreement.
func (b *Bot) requireTerms(s *discordgo.Session, i *discordgo.Interaction) bool {
	userID := interactionUser(i)
	ok, err := b.services.Match.HasAcceptedTerms(userID)
	if err != nil {
		b.logger.Error("terms lookup for %s failed: %v", userID, err)
		b.respondMessage(s, i, "Something went wrong, try again.", true)
		return false
	}
	if !ok {
		b.respondMessage(s, i, "Please sign the fair play agreement first: `/agree_tos name:<your name>`", true)
		return false
	}
	return true
}
