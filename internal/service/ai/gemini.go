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

const (
	geminiNoCandidates = "No candidates returned by Gemini API"
	geminiNoText       = "No text found"
)

// GeminiGenerator 调用 Gemini generateContent REST 接口。
type GeminiGenerator struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewGeminiGenerator 创建 Gemini 客户端。apiKey 为空时 Generate 直接返回 ErrMissingCredential。
func NewGeminiGenerator(apiKey, url string, httpClient *http.Client) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:     strings.TrimSpace(apiKey),
		url:        url,
		httpClient: httpClient,
	}
}

func (g *GeminiGenerator) Name() string { return ProviderGemini }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text *string `json:"text,omitempty"`
}

// 响应中的 part 按原始字段解析，以区分缺少 text 与 text 为 null。
type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []map[string]json.RawMessage `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate 发送单轮 prompt 并返回第一个候选的第一段文本。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingCredential
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: &prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: ProviderGemini, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("gemini: decode json: %v: %w", err, ErrMalformedResponse)
	}

	if len(decoded.Candidates) == 0 {
		return "", &NoContentError{Provider: ProviderGemini, Diagnostic: geminiNoCandidates}
	}

	content := decoded.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("gemini: candidate has no parts: %w", ErrMalformedResponse)
	}

	raw, ok := content.Parts[0]["text"]
	if !ok {
		return "", &NoContentError{Provider: ProviderGemini, Diagnostic: geminiNoText}
	}

	var text *string
	if err := json.Unmarshal(raw, &text); err != nil || text == nil {
		return "", fmt.Errorf("gemini: text is not a string: %s: %w", raw, ErrMalformedResponse)
	}

	return strings.TrimSpace(*text), nil
}
