package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"featherrank/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	model     *genai.GenerativeModel
	processor *ImageProcessor
}

func NewGeminiClient(apiKey string) (*GeminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(geminiModel)
	model.ResponseMIMEType = responseMIMEType
	model.SetTemperature(aiTemperature)

	return &GeminiClient{
		model:     model,
		processor: NewImageProcessor(),
	}, nil
}

type scoreboardResponse struct {
	Target int               `json:"target"`
	Sets   []models.SetScore `json:"sets"`
}

// ParseScoreboard reads the set scores and target off a scoresheet photo.
// The result is raw model output; the caller validates it like any other
// reported score.
func (g *GeminiClient) ParseScoreboard(data []byte) ([]models.SetScore, int, error) {
	optimized, err := g.processor.OptimizeForAI(data)
	if err != nil {
		// Fall back to the original bytes; Gemini accepts large images too.
		optimized = data
	}

	prompt := []genai.Part{
		genai.ImageData("jpeg", optimized),
		genai.Text(ParseScoreboardPrompt),
	}

	resp, err := g.model.GenerateContent(context.Background(), prompt...)
	if err != nil {
		return nil, 0, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, 0, fmt.Errorf("empty response from AI")
	}

	rawText, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected response format")
	}

	var parsed scoreboardResponse
	if err := json.Unmarshal([]byte(rawText), &parsed); err != nil {
		return nil, 0, fmt.Errorf("json unmarshal error: %w | raw: %s", err, rawText)
	}

	if parsed.Target != 11 && parsed.Target != 21 {
		parsed.Target = 21
	}
	if len(parsed.Sets) == 0 {
		return nil, 0, fmt.Errorf("no sets found on the scoreboard")
	}

	return parsed.Sets, parsed.Target, nil
}
