package discord

import "github.com/bwmarrin/discordgo"

var targetChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "21 points", Value: 21},
	{Name: "11 points", Value: 11},
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

var commands = []*discordgo.ApplicationCommand{
	{Name: "ping", Description: "Replies with pong"},
	{
		Name:        "agree_tos",
		Description: "Agree to the fair play terms and record your name",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Your name as you want it recorded", Required: true},
		},
	},
	{
		Name:        "match_singles",
		Description: "Report a singles match (pick players, then select scores)",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("a", "Player A", true),
			userOption("b", "Player B", true),
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "target", Description: "Target points", Required: false, Choices: targetChoices},
		},
	},
	{
		Name:        "match_doubles",
		Description: "Report a 2v2 match (pick players, then select scores)",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("a1", "Team A player 1", true),
			userOption("a2", "Team A player 2", true),
			userOption("b1", "Team B player 1", true),
			userOption("b2", "Team B player 2", true),
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "target", Description: "Target points", Required: false, Choices: targetChoices},
		},
	},
	{
		Name:        "verify",
		Description: "Verify a pending match",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "decision",
				Description: "Approve or reject the reported result",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Approve", Value: "approve"},
					{Name: "Reject", Value: "reject"},
				},
			},
			{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Sign with this name", Required: false},
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "match_id", Description: "Match ID (defaults to your latest pending)", Required: false},
		},
	},
	{Name: "pending", Description: "List your matches awaiting your verification"},
	{
		Name:        "leaderboard",
		Description: "Show top players by rating",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionInteger, Name: "limit", Description: "How many players to show (1-50)", Required: false, MinValue: &minLimit, MaxValue: 50},
		},
	},
	{
		Name:        "stats",
		Description: "Show player statistics",
		Options: []*discordgo.ApplicationCommandOption{
			userOption("user", "The user to show stats for", false),
		},
	},
	{Name: "export", Description: "Export the ladder to Excel (admins only)"},
	{Name: "sync_sheet", Description: "Publish standings to Google Sheets (admins only)"},
}

var minLimit = 1.0
