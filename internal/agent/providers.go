package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"venue_assistant/internal/config"
	"venue_assistant/internal/logger"
)

// NewChatModel builds the configured chat model provider.
func NewChatModel(ctx context.Context, cfg config.ModelConfig, apiKey string) (model.BaseChatModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		maxTokens := cfg.MaxTokens
		temperature := float32(cfg.Temperature)
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      apiKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Name,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	case "ollama":
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Name,
		})
	case "ark":
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey: apiKey,
			Model:  cfg.Name,
		})
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  apiKey,
			Model:   cfg.Name,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
}

// BindVenueTools advertises the venue tools to the model when the
// provider supports tool calling; otherwise the model is returned
// unchanged.
func BindVenueTools(ctx context.Context, m model.BaseChatModel, infos []*schema.ToolInfo) model.BaseChatModel {
	tcm, ok := m.(model.ToolCallingChatModel)
	if !ok {
		logger.Warn().Msg("model provider does not support tool calling, venue tools disabled")
		return m
	}

	bound, err := tcm.WithTools(infos)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to bind venue tools, continuing without them")
		return m
	}
	return bound
}
