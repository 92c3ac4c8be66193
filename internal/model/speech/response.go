package speech

// TTSResponse 语音合成结果。失败时 Success 为 false，原因写在 Message 中。
type TTSResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	AudioFile string `json:"audio_file,omitempty"`
	Voice     string `json:"-"`
}
