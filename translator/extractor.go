package translator

import (
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SpanExtractor 从 PDF 页面提取带字体和位置信息的文本段
type SpanExtractor struct {
	// Fallback 结构化提取失败时按页启用的纯文本回退提取器，可为 nil
	Fallback *FallbackExtractor
}

// NewSpanExtractor 创建带纯文本回退的提取器
func NewSpanExtractor() *SpanExtractor {
	return &SpanExtractor{Fallback: NewFallbackExtractor()}
}

// ExtractResult 一个文档的提取结果
type ExtractResult struct {
	// Pages 逐页的 Span 序列，保持页面原生的文本提取顺序。
	// 提取失败的页对应空序列，不会缺页。
	Pages [][]Span
	// Meta 从 Info 字典提取的文档元数据
	Meta DocumentMeta
	// Warnings 按页恢复的提取错误（*PageExtractionError）
	Warnings []error
}

// ExtractPages 打开 PDF 并逐页提取 Span。
// 只有文档整体无法打开时才返回错误；单页失败记录为警告，
// 该页先尝试回退提取，仍失败则降级为空页（尽力而为策略）。
func (e *SpanExtractor) ExtractPages(path string) (*ExtractResult, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		if strings.Contains(err.Error(), "stream not present") {
			return nil, fmt.Errorf("PDF文件格式不受支持或已损坏。此PDF可能使用了特殊编码、加密或压缩方式")
		}
		return nil, fmt.Errorf("无法打开 PDF 文件: %w", err)
	}
	defer file.Close()

	pageCount := reader.NumPage()
	result := &ExtractResult{
		Pages: make([][]Span, 0, pageCount),
		Meta:  DocumentMeta{Pages: pageCount},
	}

	if info := reader.Trailer().Key("Info"); !info.IsNull() {
		result.Meta.Title = infoText(info, "Title")
		result.Meta.Author = infoText(info, "Author")
	}

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		spans, err := e.extractPage(reader, pageNum)
		if err != nil {
			pageErr := &PageExtractionError{Page: pageNum, Err: err}
			result.Warnings = append(result.Warnings, pageErr)
			log.Printf("警告：%v", pageErr)

			// 回退：用纯文本提取器补救这一页
			if e.Fallback != nil {
				if fallback, ferr := e.Fallback.ExtractPage(path, pageNum); ferr == nil && len(fallback) > 0 {
					log.Printf("第 %d 页已通过回退提取恢复 %d 个文本段", pageNum, len(fallback))
					result.Pages = append(result.Pages, fallback)
					continue
				}
			}
			result.Pages = append(result.Pages, nil)
			continue
		}
		result.Pages = append(result.Pages, spans)
	}

	log.Printf("PDF 提取完成：共 %d 页", pageCount)
	return result, nil
}

// extractPage 提取单页的 Span 序列。
// 底层库在损坏的内容流上可能 panic，这里统一转成错误。
func (e *SpanExtractor) extractPage(reader *pdf.Reader, pageNum int) (spans []Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("解析内容流时发生 panic: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, fmt.Errorf("页面对象为空")
	}

	return mergeTextRuns(page.Content().Text, pageNum-1), nil
}

// 同一 run 内允许的横向间隙（相对字号）：超过视为词间距，补一个空格
const wordGapRatio = 0.25

// mergeTextRuns 把字形粒度的文本对象聚合成行内连续的文本段。
// 底层库对内容流中的每个字形单独输出一个 Text 元素，直接使用
// 会让每个字母都成为独立的 Span；这里按同行、同字体、横向相邻
// 的条件把它们合并成 run，Span 才是真正的"连续文本段"。
func mergeTextRuns(texts []pdf.Text, page int) []Span {
	var spans []Span
	var builder strings.Builder
	var run Span
	var runFont string
	var lastEnd float64
	active := false

	flush := func() {
		if !active {
			return
		}
		active = false
		// 压缩连续空白，去掉首尾空白字形留下的空隙
		text := strings.Join(strings.Fields(builder.String()), " ")
		builder.Reset()
		if text == "" {
			return
		}
		run.Text = text
		spans = append(spans, run)
	}

	for _, t := range texts {
		if active && !sameRun(runFont, run, lastEnd, t) {
			flush()
		}
		if !active {
			// 空白字形不开启新 run
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			run = Span{
				FontSize: t.FontSize,
				Bold:     isBoldFont(t.Font),
				X:        t.X,
				Y:        t.Y,
				Page:     page,
			}
			runFont = t.Font
			active = true
		} else if gap := t.X - lastEnd; gap > run.FontSize*wordGapRatio && strings.TrimSpace(t.S) != "" {
			// 没有空白字形的词间距，补一个空格
			builder.WriteByte(' ')
		}
		builder.WriteString(t.S)
		lastEnd = t.X + t.W
	}

	flush()
	return spans
}

// sameRun 判断字形是否属于当前 run：
// 相同字体、字号相近、同一基线、横向相邻（间隙不超过一个字号）
func sameRun(font string, run Span, lastEnd float64, t pdf.Text) bool {
	if t.Font != font {
		return false
	}
	if absDiff(t.FontSize, run.FontSize) > 1.0 {
		return false
	}
	if absDiff(t.Y, run.Y) > run.FontSize*0.5 {
		return false
	}
	gap := t.X - lastEnd
	return gap >= -run.FontSize && gap <= run.FontSize
}

// isBoldFont 根据字体名判断是否为粗体。
// PDF 字体名通常形如 "ABCDEF+Times-Bold" 或 "Helvetica-BoldOblique"。
func isBoldFont(fontName string) bool {
	name := strings.ToLower(fontName)
	return strings.Contains(name, "bold") ||
		strings.Contains(name, "black") ||
		strings.Contains(name, "heavy")
}

func infoText(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
