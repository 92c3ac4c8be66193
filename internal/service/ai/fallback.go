package ai

const (
	FallbackResponseEN = "Thank you for sharing with me. I'm here to listen and support you. " +
		"While I'm experiencing some technical difficulties with my AI responses right now, " +
		"please know that your feelings are valid and important. If you're in crisis, " +
		"please reach out to a mental health professional or crisis helpline immediately."

	FallbackResponseHI = "Dhanyavaad apne feelings share karne ke liye. Main sunne aur support karne ke liye yahan hoon. " +
		"Agar AI thoda down hai, phir bhi aapke feelings valid hain. Agar aap crisis me hain, turant professional help lein."
)

// Fallback 选择回退话术：只有 "en" 使用英文，其余语言（包括 "hi"、"en-US"）一律使用印地语转写版本。
func Fallback(language string) string {
	if language == "en" {
		return FallbackResponseEN
	}
	return FallbackResponseHI
}
