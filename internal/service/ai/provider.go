package ai

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted by GetResponse.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// Generator 是可互换的文本生成服务。
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrMissingCredential 在发起任何网络请求之前返回。
	ErrMissingCredential = errors.New("api key missing")
	// ErrMalformedResponse 表示响应结构无法解析出文本。
	ErrMalformedResponse = errors.New("malformed provider response")
)

// StatusError 上游返回了非成功状态码。
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// NoContentError 上游成功响应但没有给出内容，Diagnostic 会原样返回给用户。
type NoContentError struct {
	Provider   string
	Diagnostic string
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Diagnostic)
}
