package speech

import "time"

// SpeechConfig 语音服务配置
type SpeechConfig struct {
	// Azure 配置
	SubscriptionKey string `json:"-"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint,omitempty"` // 为空时按 Region 拼接

	DefaultLanguage string        `json:"defaultLanguage"`
	OutputFormat    string        `json:"outputFormat"`
	AudioDir        string        `json:"audioDir"`
	Timeout         time.Duration `json:"timeout"`
}
