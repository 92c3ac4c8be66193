package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/mindbridge/checkin/backend/internal/config"
)

const arkNoContent = "No content returned by Ark model"

// ArkGenerator 通过 eino chain 调用火山方舟模型。
type ArkGenerator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkGenerator 使用配置创建方舟模型。凭证不全时返回的生成器总是给出 ErrMissingCredential。
func NewArkGenerator(ctx context.Context, cfg config.AIConfig) (*ArkGenerator, error) {
	if !cfg.ArkEnabled() {
		return &ArkGenerator{}, nil
	}

	maxTokens := cfg.OpenAIMaxTokens
	temperature := float32(cfg.OpenAITemperature)

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.ArkBaseURL,
		Region:      cfg.ArkRegion,
		APIKey:      cfg.ArkAPIKey,
		Model:       cfg.ArkModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}

	return NewArkGeneratorWithModel(ctx, chatModel)
}

// NewArkGeneratorWithModel 用现成的 ChatModel 组装 prompt chain。
func NewArkGeneratorWithModel(ctx context.Context, chatModel model.ChatModel) (*ArkGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkGenerator{chain: runnable}, nil
}

func (g *ArkGenerator) Name() string { return ProviderArk }

// Generate 运行 chain 并返回模型回复。
func (g *ArkGenerator) Generate(ctx context.Context, userPrompt string) (string, error) {
	if g.chain == nil {
		return "", ErrMissingCredential
	}

	msg, err := g.chain.Invoke(ctx, map[string]any{"query": userPrompt})
	if err != nil {
		return "", fmt.Errorf("ark: failed to run chain: %w", err)
	}

	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", &NoContentError{Provider: ProviderArk, Diagnostic: arkNoContent}
	}

	return strings.TrimSpace(msg.Content), nil
}
