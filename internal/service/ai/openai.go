package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const systemPrompt = "You are a compassionate mental health assistant."

// OpenAIGenerator 通过 REST 调用 chat completions 接口。
type OpenAIGenerator struct {
	apiKey      string
	url         string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// OpenAIOptions 模型参数。
type OpenAIOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewOpenAIGenerator 创建 OpenAI 客户端。apiKey 为空时 Generate 直接返回 ErrMissingCredential。
func NewOpenAIGenerator(apiKey, url string, opts OpenAIOptions, httpClient *http.Client) *OpenAIGenerator {
	return &OpenAIGenerator{
		apiKey:      strings.TrimSpace(apiKey),
		url:         url,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		httpClient:  httpClient,
	}
}

func (g *OpenAIGenerator) Name() string { return ProviderOpenAI }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate 以固定的 system prompt 发送单轮对话。
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingCredential
	}

	payload, err := json.Marshal(openAIRequest{
		Model: g.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("openai: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: ProviderOpenAI, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded openAIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("openai: decode json: %v: %w", err, ErrMalformedResponse)
	}

	if len(decoded.Choices) == 0 || decoded.Choices[0].Message == nil || decoded.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("openai: no choices[0].message.content: %w", ErrMalformedResponse)
	}

	return strings.TrimSpace(*decoded.Choices[0].Message.Content), nil
}
