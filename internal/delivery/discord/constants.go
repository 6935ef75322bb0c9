package discord

const (
	// Display limits
	topPlayersLimit  = 10
	maxMessageLength = 2000

	// Embed colors
	colorGold  = 0xFFD700 // Leaderboard
	colorGreen = 0x2ECC71 // Verified
	colorRed   = 0xE74C3C // Rejected
	colorBlue  = 0x3498DB // Info/pending

	// Verification reactions
	emojiApprove = "✅"
	emojiReject  = "❌"

	// Component custom ID prefixes for the score entry view
	customIDSet    = "score_set"
	customIDDeuce  = "score_deuce"
	customIDSubmit = "score_submit"
	deuceValue     = "DEUCE"

	// Score view session lifetime
	sessionTTLMinutes = 10
)
