package advisory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini returns an Advisor backed by Gemini. Without an API key it
// returns an unconfigured Advisor and makes no network calls.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Advisor, error) {
	if cfg.APIKey == "" {
		return New(nil), nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return New(&GeminiGenerator{client: client, model: cfg.Model}), nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, contents []*genai.Content, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}
