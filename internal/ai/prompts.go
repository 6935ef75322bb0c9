package ai

const (
	// AI model configuration
	geminiModel      = "gemini-2.5-flash"
	aiTemperature    = 0.1
	responseMIMEType = "application/json"
)

// ParseScoreboardPrompt asks for the per-set scores of a badminton match as
// written on a court scoresheet or scoreboard photo.
const ParseScoreboardPrompt = `Analyze this photo of a badminton scoresheet or scoreboard.
    The match is best of three sets between side A (listed first / left / top)
    and side B (listed second / right / bottom).

    CRITICAL RULES:
    - Read the final score of each completed set, in playing order.
    - Badminton sets are played to 11 or 21 rally points; deuce can push a
      set as high as 15 or 30. Digits must be read exactly, never guessed.
    - Report at most 3 sets. Skip unplayed or crossed-out sets.
    - "target" is the base points of a set: 21 unless the sheet clearly
      shows an 11-point match.

    Return a single JSON object with these exact keys:
    "target" (int - 11 or 21),
    "sets" (array of objects with keys "A" (int) and "B" (int), one per
    completed set, in playing order).`
