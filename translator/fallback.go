package translator

import (
	"fmt"
	"strings"

	dslipakpdf "github.com/dslipak/pdf"
)

// FallbackExtractor 纯文本回退提取器。
// 当结构化 Span 提取失败时，用 dslipak/pdf 库按页提取纯文本，
// 合成不带排版信息的 Span，避免整页内容丢失。
type FallbackExtractor struct{}

// NewFallbackExtractor 创建回退提取器
func NewFallbackExtractor() *FallbackExtractor {
	return &FallbackExtractor{}
}

// 合成 Span 使用的默认排版参数：正文字号，逐行递增的纵坐标
const (
	fallbackFontSize = 10.0
	fallbackLineStep = 12.0
)

// ExtractPage 提取指定页（1 起始）的纯文本并合成 Span 序列
func (f *FallbackExtractor) ExtractPage(path string, pageNum int) (spans []Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("回退提取时发生 panic: %v", r)
		}
	}()

	reader, err := dslipakpdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("回退库打开失败: %w", err)
	}

	if pageNum < 1 || pageNum > reader.NumPage() {
		return nil, fmt.Errorf("页码 %d 超出范围", pageNum)
	}

	page := reader.Page(pageNum)
	text, err := page.GetPlainText(nil)
	if err != nil {
		return nil, fmt.Errorf("回退提取失败: %w", err)
	}

	// 纯文本没有位置信息，按行合成 Span，纵坐标逐行递增，
	// 使后续的段落重组对空行间距仍然有效
	y := 0.0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		y += fallbackLineStep
		if line == "" {
			// 空行在坐标上留出一个段落间距
			y += fallbackLineStep
			continue
		}
		spans = append(spans, Span{
			Text:     line,
			FontSize: fallbackFontSize,
			X:        0,
			Y:        y,
			Page:     pageNum - 1,
		})
	}

	return spans, nil
}
