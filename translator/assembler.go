package translator

import "strings"

// DefaultGapThreshold 默认的段落间垂直间距阈值（PDF 原生坐标单位）。
// 这是一个经验值，没有严格推导，因此做成可配置参数。
const DefaultGapThreshold = 15.0

// Assembler 段落重组器：把一页内连续的已分类 Span 合并成段落级单元
type Assembler struct {
	// GapThreshold 相邻 Span 垂直距离超过该值时视为段落边界。
	// 恰好等于阈值时继续合并，严格大于才分段。
	GapThreshold float64
}

// NewAssembler 创建使用默认间距阈值的段落重组器
func NewAssembler() *Assembler {
	return &Assembler{GapThreshold: DefaultGapThreshold}
}

// AssemblePage 对一页的 Span 序列执行状态机，产出有序的段落单元。
//
// 状态：一个 Span 累积缓冲区和最近入缓冲 Span 的纵坐标。
// 逐个处理输入 Span：
//   - Title/Subtitle：先冲刷缓冲区，再把该 Span 单独作为一个独立单元输出；
//     标题永远不会被并入已有段落。
//   - 缓冲区非空且与上一入缓冲 Span 的垂直距离超过阈值：冲刷缓冲区，
//     用当前 Span 开始新缓冲。
//   - 其余情况：追加到缓冲区。
//
// 页面结束时冲刷剩余缓冲区。
func (a *Assembler) AssemblePage(spans []ClassifiedSpan) []ParagraphUnit {
	units := make([]ParagraphUnit, 0, len(spans))

	var buffer []ClassifiedSpan
	var lastY float64

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		units = append(units, mergeBuffer(buffer))
		buffer = buffer[:0]
	}

	for _, span := range spans {
		switch {
		case span.Kind == KindTitle || span.Kind == KindSubtitle:
			// 标题总是开启新的视觉单元
			flush()
			units = append(units, ParagraphUnit{
				Text:     span.Text,
				Kind:     span.Kind,
				FontSize: span.FontSize,
			})

		case len(buffer) > 0 && absDiff(span.Y, lastY) > a.GapThreshold:
			// 大的垂直跳变意味着段落边界，即使没有显式标题
			flush()
			buffer = append(buffer, span)
			lastY = span.Y

		default:
			buffer = append(buffer, span)
			lastY = span.Y
		}
	}

	flush()
	return units
}

// AssemblePages 对逐页的分类结果执行段落重组
func (a *Assembler) AssemblePages(pages [][]ClassifiedSpan) [][]ParagraphUnit {
	result := make([][]ParagraphUnit, 0, len(pages))
	for _, spans := range pages {
		result = append(result, a.AssemblePage(spans))
	}
	return result
}

// mergeBuffer 把缓冲区内的 Span 合并为一个段落单元。
// 文本按原顺序以空格连接，Kind 取最后一个 Span，字号取第一个。
func mergeBuffer(buffer []ClassifiedSpan) ParagraphUnit {
	texts := make([]string, 0, len(buffer))
	for _, s := range buffer {
		texts = append(texts, s.Text)
	}
	return ParagraphUnit{
		Text:     strings.Join(texts, " "),
		Kind:     buffer[len(buffer)-1].Kind,
		FontSize: buffer[0].FontSize,
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
