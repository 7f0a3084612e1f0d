// Package oracle holds clients for external schedule generation services.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

// ErrNoContent is returned when the model answers without any text part.
var ErrNoContent = errors.New("gemini returned no text content")

// generator is the slice of *genai.GenerativeModel the client needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini proposes timetables through the Gemini API.
type Gemini struct {
	model  generator
	client *genai.Client
	name   string
	logger *zap.Logger
}

// NewGemini connects to Gemini. The model is asked for JSON output.
func NewGemini(ctx context.Context, cfg config.OracleConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("oracle api key is not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.ResponseMIMEType = "application/json"

	logger.Info("gemini oracle initialised", zap.String("model", cfg.Model))
	return &Gemini{model: model, client: client, name: cfg.Model, logger: logger}, nil
}

// Propose sends the prompt and returns the concatenated text of the first candidate.
func (g *Gemini) Propose(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.name, err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	g.logger.Debug("gemini answered", zap.String("model", g.name), zap.Int("bytes", len(text)))
	return text, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", ErrNoContent
	}
	return b.String(), nil
}
