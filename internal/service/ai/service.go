package ai

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/config"
	"github.com/mindbridge/checkin/backend/internal/metrics"
)

const maxResponseBytes = 1 << 20

// Service 把消息分发给具体的文本生成服务，并把所有失败转换成回退话术。
type Service struct {
	generators      map[string]Generator
	defaultProvider string
	timeout         time.Duration
	log             zerolog.Logger
}

// Option customises Service construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	generators []Generator
}

// WithHTTPClient 替换 Gemini/OpenAI 共用的 HTTP 客户端。
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithGenerator 注册额外的或替换同名的生成器。
func WithGenerator(g Generator) Option {
	return func(o *options) { o.generators = append(o.generators, g) }
}

// NewService creates the provider adapter from configuration.
func NewService(ctx context.Context, cfg config.AIConfig, logger zerolog.Logger, opts ...Option) (*Service, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	arkGen, err := NewArkGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		generators:      make(map[string]Generator),
		defaultProvider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		timeout:         cfg.Timeout,
		log:             logger.With().Str("component", "ai").Logger(),
	}

	svc.register(NewGeminiGenerator(cfg.GeminiAPIKey, cfg.GeminiURL, o.httpClient))
	svc.register(NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIURL, OpenAIOptions{
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemperature,
	}, o.httpClient))
	svc.register(arkGen)

	for _, g := range o.generators {
		svc.register(g)
	}

	if svc.defaultProvider == "" {
		svc.defaultProvider = ProviderGemini
	}
	if _, ok := svc.generators[svc.defaultProvider]; !ok {
		svc.log.Warn().Str("provider", svc.defaultProvider).Msg("configured provider is not supported, every reply will be the fallback")
	}

	return svc, nil
}

func (s *Service) register(g Generator) {
	s.generators[strings.ToLower(g.Name())] = g
}

// DefaultProvider 返回配置的默认服务名。
func (s *Service) DefaultProvider() string {
	return s.defaultProvider
}

// Respond 使用默认服务生成回复。
func (s *Service) Respond(ctx context.Context, message, language string) string {
	return s.GetResponse(ctx, message, language, s.defaultProvider)
}

// GetResponse 从指定服务获取回复，从不返回错误。
// 凭证缺失、非 200、响应异常、网络错误甚至 panic 都会转成按 language 选择的回退话术；
// 只有 NoContentError 的诊断文本会原样返回。
func (s *Service) GetResponse(ctx context.Context, message, language, provider string) (reply string) {
	fallback := Fallback(language)

	name := strings.ToLower(strings.TrimSpace(provider))
	if name == "" {
		name = s.defaultProvider
	}

	gen, ok := s.generators[name]
	if !ok {
		s.log.Warn().Str("provider", provider).Msg("unknown provider, using fallback")
		metrics.ProviderOutcomes.WithLabelValues("unknown", "unsupported").Inc()
		return fallback
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("provider", name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("exception in provider call, using fallback")
			metrics.ProviderOutcomes.WithLabelValues(name, "panic").Inc()
			reply = fallback
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := gen.Generate(ctx, message)
	metrics.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

	return s.resolve(name, text, err, fallback)
}

// resolve maps a generator result onto the text returned to the user.
func (s *Service) resolve(provider, text string, err error, fallback string) string {
	if err == nil {
		metrics.ProviderOutcomes.WithLabelValues(provider, "ok").Inc()
		return text
	}

	var noContent *NoContentError
	var status *StatusError

	switch {
	case errors.As(err, &noContent):
		s.log.Warn().Str("provider", provider).Str("diagnostic", noContent.Diagnostic).Msg("provider returned no content")
		metrics.ProviderOutcomes.WithLabelValues(provider, "no_content").Inc()
		return noContent.Diagnostic
	case errors.Is(err, ErrMissingCredential):
		s.log.Warn().Str("provider", provider).Msg("api key missing, returning fallback")
		metrics.ProviderOutcomes.WithLabelValues(provider, "missing_credential").Inc()
	case errors.As(err, &status):
		s.log.Error().Str("provider", provider).Int("status", status.StatusCode).Str("body", status.Body).Msg("provider returned non-success status")
		metrics.ProviderOutcomes.WithLabelValues(provider, "upstream_status").Inc()
	case errors.Is(err, ErrMalformedResponse):
		s.log.Error().Err(err).Str("provider", provider).Msg("malformed provider response")
		metrics.ProviderOutcomes.WithLabelValues(provider, "malformed").Inc()
	default:
		s.log.Error().Err(err).Str("provider", provider).Msg("provider call failed")
		metrics.ProviderOutcomes.WithLabelValues(provider, "error").Inc()
	}
	return fallback
}
