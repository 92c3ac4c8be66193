package chat

// Message 是一次聊天轮次的输入，只读。
type Message struct {
	Text     string `json:"message"`
	Language string `json:"language"`
}

// DefaultLanguage 请求未携带语言时使用。
const DefaultLanguage = "en"

// Normalize 补全缺省语言。
func (m Message) Normalize() Message {
	if m.Language == "" {
		m.Language = DefaultLanguage
	}
	return m
}
