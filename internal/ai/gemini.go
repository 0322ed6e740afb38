package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiOracle implements Oracle using Google's Gemini models.
type GeminiOracle struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// GeminiConfig tunes the generation settings. Zero values fall back to
// the defaults below.
type GeminiConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int32
}

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultTemperature = 0.2
	defaultMaxTokens   = 4000
)

// NewGeminiOracle initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiOracle(ctx context.Context, apiKey string, cfg GeminiConfig) (*GeminiOracle, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	model := client.GenerativeModel(cfg.Model)

	// Force JSON responses for structured parsing. The extraction layer still
	// guards against fenced or prose-wrapped output.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxTokens)

	return &GeminiOracle{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (o *GeminiOracle) Close() {
	o.client.Close()
}

// Complete sends the prompt plus the JSON-encoded payload and returns the
// model's raw text.
func (o *GeminiOracle) Complete(ctx context.Context, prompt string, payload any) (string, error) {
	fullPrompt := prompt
	if payload != nil {
		input, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("gemini: marshal payload: %w", err)
		}
		fullPrompt = fmt.Sprintf("%s\n\nINPUT:\n%s", prompt, input)
	}

	resp, err := o.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: API returned empty candidates")
	}

	var textParts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		txt, ok := part.(genai.Text)
		if !ok || strings.TrimSpace(string(txt)) == "" {
			continue
		}
		textParts = append(textParts, string(txt))
	}
	if len(textParts) == 0 {
		return "", fmt.Errorf("gemini: API returned empty text parts")
	}

	return strings.Join(textParts, "\n"), nil
}
