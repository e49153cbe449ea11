package translator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 列表标记：行首的编号/项目符号（如 "1. "、"- "、"• "），
// 或 "A. " / "A) " 形式的字母编号。
var (
	listMarkerRegex = regexp.MustCompile(`^[0-9.\-•◦]+\s+`)
	letterItemRegex = regexp.MustCompile(`^[A-Z][.)]\s+`)
)

// 分类判定使用的排版阈值
const (
	titleFontSize    = 12.0
	subtitleFontSize = 10.0
	titleMaxLen      = 100
	subtitleMaxLen   = 80
)

// Classify 根据排版特征和文本模式给一段文本分类。
// 纯函数：只读取 (text, fontSize, bold)，从不读取位置信息。
//
// 判定按固定优先级，先命中先生效：
//  1. Title：字号 > 12 或粗体，且修剪后长度 < 100
//  2. ListItem：以列表标记开头
//  3. Subtitle：修剪后长度 < 80 且字号 > 10
//  4. Paragraph：兜底
//
// 注意：优先级 1 在 2 之前意味着粗体的短列表项会被判为 Title，
// 永远到不了 ListItem 分支。这是有意保留的启发式顺序。
func Classify(text string, fontSize float64, bold bool) Kind {
	trimmed := strings.TrimSpace(text)
	// 长度按 Unicode 码点计，多字节字符不影响阈值判定
	length := utf8.RuneCountInString(trimmed)

	if (fontSize > titleFontSize || bold) && length < titleMaxLen {
		return KindTitle
	}

	if listMarkerRegex.MatchString(trimmed) || letterItemRegex.MatchString(trimmed) {
		return KindListItem
	}

	if length < subtitleMaxLen && fontSize > subtitleFontSize {
		return KindSubtitle
	}

	return KindParagraph
}

// ClassifySpans 对一页的所有 Span 逐个分类，返回新的序列
func ClassifySpans(spans []Span) []ClassifiedSpan {
	classified := make([]ClassifiedSpan, 0, len(spans))
	for _, s := range spans {
		classified = append(classified, ClassifiedSpan{
			Span: s,
			Kind: Classify(s.Text, s.FontSize, s.Bold),
		})
	}
	return classified
}
