package rag

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIConfig configures the chat-completion model. BaseURL supports
// OpenAI-compatible providers; RequestsPerMinute of 0 disables limiting.
type OpenAIConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerMinute int
}

// OpenAIModel implements Model on top of an OpenAI-compatible chat API.
type OpenAIModel struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
}

func NewOpenAIModel(cfg OpenAIConfig) (*OpenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai model: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model: model name is required")
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	m := &OpenAIModel{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
	}
	if cfg.RequestsPerMinute > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}
	return m, nil
}

func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	resp, err := m.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
