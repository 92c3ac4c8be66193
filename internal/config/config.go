package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config 聚合整个服务的配置项。进程启动时构造一次，之后只读。
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	AI       AIConfig
	Speech   SpeechConfig
	Checkin  CheckinConfig
}

// Load 从环境变量加载配置。调用方负责先加载 .env。
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port            string        `env:"PORT"                    env-default:"8080"`
	StaticDir       string        `env:"STATIC_DIR"              env-default:"static"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    env-default:"75s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"          env-default:"65536"`
}

// Addr 解析服务器监听地址，允许直接传入 ":8080" 或 "127.0.0.1:8080"。
func (c ServerConfig) Addr() string {
	port := strings.TrimSpace(c.Port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// LogConfig 控制日志输出。
type LogConfig struct {
	Env   string `env:"APP_ENV"   env-default:"development"`
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// IsDevelopment 开发环境使用可读的控制台输出。
func (c LogConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseConfig 选择持久化实现。
type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" env-default:"sqlite3"`
	URL    string `env:"DATABASE_URL"    env-default:"mindbridge.db"`
}

// AIConfig 描述文本生成服务的凭证与端点。
type AIConfig struct {
	Provider string        `env:"AI_PROVIDER" env-default:"gemini"`
	Timeout  time.Duration `env:"AI_TIMEOUT"  env-default:"30s"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiURL    string `env:"GEMINI_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"`

	OpenAIAPIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIURL         string  `env:"OPENAI_URL"         env-default:"https://api.openai.com/v1/chat/completions"`
	OpenAIModel       string  `env:"OPENAI_MODEL"       env-default:"gpt-4"`
	OpenAIMaxTokens   int     `env:"OPENAI_MAX_TOKENS"  env-default:"200"`
	OpenAITemperature float64 `env:"OPENAI_TEMPERATURE" env-default:"0.7"`

	ArkAPIKey  string `env:"ARK_API_KEY"`
	ArkModel   string `env:"ARK_MODEL"`
	ArkBaseURL string `env:"ARK_BASE_URL" env-default:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion  string `env:"ARK_REGION"   env-default:"cn-beijing"`
}

// ArkEnabled 表示是否提供了 Ark 所需的密钥与模型。
func (c AIConfig) ArkEnabled() bool {
	return strings.TrimSpace(c.ArkAPIKey) != "" && strings.TrimSpace(c.ArkModel) != ""
}

// SpeechConfig 描述 Azure 语音合成配置。
type SpeechConfig struct {
	AzureKey        string        `env:"AZURE_TTS_KEY"`
	AzureRegion     string        `env:"AZURE_TTS_REGION"`
	Endpoint        string        `env:"AZURE_TTS_ENDPOINT"`
	DefaultLanguage string        `env:"TTS_DEFAULT_LANGUAGE" env-default:"hi-IN"`
	AudioDir        string        `env:"AUDIO_DIR"            env-default:"audio"`
	Timeout         time.Duration `env:"TTS_TIMEOUT"          env-default:"30s"`
}

// Enabled 表示是否提供了必需的密钥。
func (c SpeechConfig) Enabled() bool {
	return strings.TrimSpace(c.AzureKey) != "" && strings.TrimSpace(c.AzureRegion) != ""
}

// CheckinConfig 控制打卡流程。
type CheckinConfig struct {
	// CrisisScreening 为 true 时打卡备注命中危机语言会直接返回危机话术。
	CrisisScreening bool `env:"CHECKIN_CRISIS_SCREENING" env-default:"false"`
}
