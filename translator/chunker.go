package translator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkChars 单次翻译调用允许的最大字符数。
// 经验值，对应翻译服务的单次请求长度限制，可配置。
const DefaultMaxChunkChars = 4500

// 句子边界：句末标点（. ! ?）之后的空白
var sentenceBoundaryRegex = regexp.MustCompile(`[.!?]\s+`)

// SplitSentences 按句子边界切分文本。
// 边界定义为 . ! ? 之一后面跟随的空白；标点保留在前一句末尾。
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceBoundaryRegex.FindAllStringIndex(text, -1) {
		// loc[0] 是标点位置，loc[1] 是空白结束位置；
		// 句子包含标点本身，丢弃其后的空白
		end := loc[0] + 1
		sentence := strings.TrimSpace(text[start:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}

	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// PackChunks 把句子贪心打包成分块，每块不超过 maxChars 个字符
// （按 Unicode 码点计）。单句超长时硬切分，保证任何分块都不超限。
func PackChunks(sentences []string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	var chunks []string
	var parts []string
	count := 0

	flush := func() {
		if len(parts) > 0 {
			chunks = append(chunks, strings.Join(parts, " "))
			parts = parts[:0]
			count = 0
		}
	}

	for _, sentence := range sentences {
		runes := utf8.RuneCountInString(sentence)

		// 超长句子无法整句放进任何分块，硬切分
		if runes > maxChars {
			flush()
			chunks = append(chunks, hardSplit(sentence, maxChars)...)
			continue
		}

		needed := runes
		if len(parts) > 0 {
			needed++ // 连接用的空格
		}
		if count+needed > maxChars {
			flush()
			needed = runes
		}
		parts = append(parts, sentence)
		count += needed
	}

	flush()
	return chunks
}

// hardSplit 把超长句子按字符数切分，每段不超过 maxChars 个码点
func hardSplit(text string, maxChars int) []string {
	var parts []string
	runes := []rune(text)
	for len(runes) > maxChars {
		parts = append(parts, string(runes[:maxChars]))
		runes = runes[maxChars:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
