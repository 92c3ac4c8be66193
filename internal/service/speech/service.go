package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mindbridge/checkin/backend/internal/config"
	"github.com/mindbridge/checkin/backend/internal/metrics"
	speechmodel "github.com/mindbridge/checkin/backend/internal/model/speech"
)

// Service 语音合成业务逻辑：选择声音、调用 Azure、把音频写入磁盘。
type Service struct {
	config *speechmodel.SpeechConfig
	client *AzureTTSClient
	log    zerolog.Logger
}

// NewService 创建语音服务实例
func NewService(config *speechmodel.SpeechConfig, client *AzureTTSClient, logger zerolog.Logger) *Service {
	if client == nil {
		client = NewAzureTTSClient(config, nil)
	}
	return &Service{
		config: config,
		client: client,
		log:    logger.With().Str("component", "speech").Logger(),
	}
}

// FromConfig 把环境配置转换为语音服务配置。
func FromConfig(cfg config.SpeechConfig) *speechmodel.SpeechConfig {
	return &speechmodel.SpeechConfig{
		SubscriptionKey: cfg.AzureKey,
		Region:          cfg.AzureRegion,
		Endpoint:        cfg.Endpoint,
		DefaultLanguage: cfg.DefaultLanguage,
		OutputFormat:    defaultOutputFormat,
		AudioDir:        cfg.AudioDir,
		Timeout:         cfg.Timeout,
	}
}

// AudioDir 合成文件所在目录。
func (s *Service) AudioDir() string {
	return s.config.AudioDir
}

// Synthesize 合成语音并返回结果，错误统一写入 Message。
func (s *Service) Synthesize(ctx context.Context, req speechmodel.TTSRequest) speechmodel.TTSResponse {
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = s.config.DefaultLanguage
	}
	voice := ResolveVoice(language)

	if _, _, err := resolveCredentials(s.config); err != nil {
		s.log.Warn().Msg("tts requested without credentials")
		metrics.SpeechSyntheses.WithLabelValues("missing_credentials").Inc()
		return speechmodel.TTSResponse{Success: false, Message: err.Error()}
	}

	if strings.TrimSpace(req.Text) == "" {
		metrics.SpeechSyntheses.WithLabelValues("error").Inc()
		return failure(errors.New("text is empty"))
	}

	audio, err := s.client.Synthesize(ctx, req.Text, voice)
	if err != nil {
		s.log.Error().Err(err).Str("voice", voice).Msg("tts synthesis failed")
		metrics.SpeechSyntheses.WithLabelValues("error").Inc()
		return failure(err)
	}

	name, err := s.writeAudio(audio)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to save synthesized audio")
		metrics.SpeechSyntheses.WithLabelValues("error").Inc()
		return failure(err)
	}

	metrics.SpeechSyntheses.WithLabelValues("ok").Inc()
	s.log.Info().Str("voice", voice).Str("file", name).Int("bytes", len(audio)).Msg("speech synthesized")

	return speechmodel.TTSResponse{
		Success:   true,
		Message:   "Text spoken in " + voice,
		AudioFile: name,
		Voice:     voice,
	}
}

func (s *Service) writeAudio(audio []byte) (string, error) {
	dir := s.config.AudioDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	name := "output_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".mp3"
	if err := os.WriteFile(filepath.Join(dir, name), audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return name, nil
}

func failure(err error) speechmodel.TTSResponse {
	return speechmodel.TTSResponse{Success: false, Message: "TTS Error: " + err.Error()}
}
