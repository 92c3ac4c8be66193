package speech

// TTSRequest 语音合成请求
type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"` // hi-IN, en-US, etc.
}
