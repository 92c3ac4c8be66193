package speech

import (
	"errors"
	"fmt"
	"strings"

	speechmodel "github.com/mindbridge/checkin/backend/internal/model/speech"
)

// ErrMissingCredentials 缺少 Azure 订阅密钥或区域。
var ErrMissingCredentials = errors.New("Azure TTS credentials missing")

// resolveCredentials 返回规范化后的订阅密钥与合成端点，缺失时返回 ErrMissingCredentials。
func resolveCredentials(cfg *speechmodel.SpeechConfig) (string, string, error) {
	if cfg == nil {
		return "", "", ErrMissingCredentials
	}

	key := strings.TrimSpace(cfg.SubscriptionKey)
	region := strings.TrimSpace(cfg.Region)
	if key == "" || region == "" {
		return "", "", ErrMissingCredentials
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
	}

	return key, endpoint, nil
}
