package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	speechmodel "github.com/mindbridge/checkin/backend/internal/model/speech"
)

const (
	defaultOutputFormat = "audio-16khz-128kbitrate-mono-mp3"
	maxAudioBytes       = 32 << 20
)

// AzureTTSClient 调用 Azure 认知服务的 REST 合成接口。
type AzureTTSClient struct {
	config     *speechmodel.SpeechConfig
	httpClient *http.Client
}

// NewAzureTTSClient 创建 Azure TTS 客户端。
func NewAzureTTSClient(config *speechmodel.SpeechConfig, httpClient *http.Client) *AzureTTSClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &AzureTTSClient{config: config, httpClient: httpClient}
}

// buildSSML 生成单声音的 SSML 文档，文本做 XML 转义。
func buildSSML(voice, text string) (string, error) {
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", fmt.Errorf("escape text: %w", err)
	}

	locale := voiceLocale(voice)
	return fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>",
		locale, locale, voice, escaped.String(),
	), nil
}

// Synthesize 以指定声音合成文本，返回 mp3 音频字节。
func (c *AzureTTSClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	key, endpoint, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	ssml, err := buildSSML(voice, text)
	if err != nil {
		return nil, err
	}

	format := strings.TrimSpace(c.config.OutputFormat)
	if format == "" {
		format = defaultOutputFormat
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(ssml))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", format)
	req.Header.Set("User-Agent", "mindbridge-checkin")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("synthesis returned no audio")
	}

	return body, nil
}
