package speech

import "strings"

// DefaultVoice 未知语言时使用的声音。
const DefaultVoice = "hi-IN-SwaraNeural"

var voicesByLanguage = map[string]string{
	"hi-IN": "hi-IN-SwaraNeural",
	"en-US": "en-US-AriaNeural",
	"en-GB": "en-GB-LibbyNeural",
	"es-ES": "es-ES-ElviraNeural",
	"fr-FR": "fr-FR-DeniseNeural",
}

// ResolveVoice 根据语言代码选择神经网络声音，未收录的语言回落到 DefaultVoice。
func ResolveVoice(language string) string {
	if voice, ok := voicesByLanguage[strings.TrimSpace(language)]; ok {
		return voice
	}
	return DefaultVoice
}

// voiceLocale 取声音名称的区域前缀，例如 en-GB-LibbyNeural -> en-GB。
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return "hi-IN"
	}
	return parts[0] + "-" + parts[1]
}

// SupportedLanguages 返回已收录的语言代码。
func SupportedLanguages() []string {
	out := make([]string, 0, len(voicesByLanguage))
	for lang := range voicesByLanguage {
		out = append(out, lang)
	}
	return out
}
