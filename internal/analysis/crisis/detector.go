package crisis

import (
	"regexp"
	"strings"
)

// Kind 表示触发危机判定的规则类型。
type Kind string

const (
	None    Kind = "none"
	Keyword Kind = "keyword"
	Pattern Kind = "pattern"
)

// Decision 给出危机识别结果以及命中的规则。
type Decision struct {
	Crisis  bool
	Kind    Kind
	Matched string
}

// keywords 按顺序做大小写无关的子串匹配。
var keywords = []string{
	"suicide", "kill myself", "end my life", "hurt myself", "self harm",
	"want to die", "better off dead", "no point living", "cutting myself",
	"overdose", "jump off", "hang myself", "can't go on",
}

// patterns 覆盖关键词没有列出的常见改写。
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:want|going|gonna)\s+(?:to\s+)?(?:kill|hurt)\s+myself\b`),
	regexp.MustCompile(`\bno\s+(?:point|reason)\s+(?:to\s+)?(?:live|living)\b`),
	regexp.MustCompile(`\bcan't\s+(?:take\s+)?(?:it\s+)?(?:anymore|any\s+more)\b`),
}

// Detect 判断消息是否包含危机语言。空字符串返回 false。
func Detect(message string) bool {
	return Analyze(message).Crisis
}

// Analyze 先匹配关键词，未命中时再尝试正则，返回第一处命中。
func Analyze(message string) Decision {
	normalized := strings.ToLower(message)
	if normalized == "" {
		return Decision{Kind: None}
	}

	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			return Decision{Crisis: true, Kind: Keyword, Matched: kw}
		}
	}

	for _, p := range patterns {
		if loc := p.FindStringIndex(normalized); loc != nil {
			return Decision{Crisis: true, Kind: Pattern, Matched: normalized[loc[0]:loc[1]]}
		}
	}

	return Decision{Kind: None}
}

// Keywords 返回关键词列表的副本。
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}
