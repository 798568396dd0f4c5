package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Model generates a text completion for a single prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiModel calls the Gemini API through the official SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

var _ Model = (*GeminiModel)(nil)

// NewGeminiModel creates a client for the Gemini API backend.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("gemini model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Generate sends prompt once and returns the concatenated text parts of the
// first candidate. A reply without text is returned as "" so that callers
// judge it like any other unusable output.
func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
