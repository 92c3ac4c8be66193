package crisis

const (
	ResponseEN = "I sense you might be in crisis. Are you safe right now? If not, please contact your local emergency services or a crisis helpline immediately."
	ResponseHI = "Mujhe lagta hai ki aap crisis me ho sakte hain. Kripya turant local emergency services ya crisis helpline se contact karein."
)

// Response 返回固定的危机支持话术。只有 "hi" 使用印地语转写版本，其余语言一律英文。
func Response(language string) string {
	if language == "hi" {
		return ResponseHI
	}
	return ResponseEN
}
