package translator

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Align 段落对齐方式
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignJustify Align = "justify"
)

// Style 输出段落的呈现样式
type Style struct {
	Align      Align
	Bold       bool
	FontSize   float64
	LineHeight float64
	Indent     float64 // 左缩进（毫米）
	Bullet     bool    // 是否带项目符号
	SpaceAfter float64 // 段后间距（毫米）
}

// 各语义类型对应的输出样式
var (
	titleStyle     = Style{Align: AlignCenter, Bold: true, FontSize: 16, LineHeight: 8, SpaceAfter: 6}
	subtitleStyle  = Style{Align: AlignLeft, Bold: true, FontSize: 13, LineHeight: 7, SpaceAfter: 4}
	listItemStyle  = Style{Align: AlignLeft, FontSize: 10, LineHeight: 5.5, Indent: 8, Bullet: true, SpaceAfter: 2}
	paragraphStyle = Style{Align: AlignJustify, FontSize: 10, LineHeight: 5.5, SpaceAfter: 3}
)

// StyleFor 返回语义类型对应的样式
func StyleFor(kind Kind) Style {
	switch kind {
	case KindTitle:
		return titleStyle
	case KindSubtitle:
		return subtitleStyle
	case KindListItem:
		return listItemStyle
	default:
		return paragraphStyle
	}
}

// Backend 文档渲染后端：接收样式化的段落/空白/分页原语，
// 产出序列化的文档字节。输入文本是只认 &amp; &lt; &gt; 三个
// 实体的极简标记，后端绘制前需要解码。
type Backend interface {
	Begin(meta DocumentMeta) error
	AddParagraph(text string, style Style) error
	AddSpacer(height float64) error
	PageBreak() error
	Output(w io.Writer) error
}

// 渲染失败时替代段落的空白占位符高度（毫米）
const placeholderHeight = 2.5

// DocumentRenderer 把逐页的段落单元映射为带样式的输出文档
type DocumentRenderer struct {
	Backend Backend
}

// NewDocumentRenderer 创建使用指定后端的渲染器
func NewDocumentRenderer(backend Backend) *DocumentRenderer {
	return &DocumentRenderer{Backend: backend}
}

// Render 渲染整个文档并写出序列化字节。
// 每页内容之后插入分页符，最后一页除外；空页不产生任何内容。
// 单个段落渲染失败时用空白占位符替代并继续，失败作为
// *RenderError 警告返回，从不中断整个文档的生成。
func (r *DocumentRenderer) Render(pages [][]ParagraphUnit, meta DocumentMeta, w io.Writer) ([]error, error) {
	if err := r.Backend.Begin(meta); err != nil {
		return nil, fmt.Errorf("初始化输出文档失败: %w", err)
	}

	var warnings []error
	for pageIdx, units := range pages {
		for _, unit := range units {
			text := EscapeMarkup(unit.Text)
			if err := r.Backend.AddParagraph(text, StyleFor(unit.Kind)); err != nil {
				renderErr := &RenderError{Page: pageIdx + 1, Err: err}
				warnings = append(warnings, renderErr)
				log.Printf("警告：%v", renderErr)
				if err := r.Backend.AddSpacer(placeholderHeight); err != nil {
					return warnings, fmt.Errorf("写入占位符失败: %w", err)
				}
			}
		}

		if pageIdx < len(pages)-1 {
			if err := r.Backend.PageBreak(); err != nil {
				return warnings, fmt.Errorf("插入分页符失败: %w", err)
			}
		}
	}

	if err := r.Backend.Output(w); err != nil {
		return warnings, fmt.Errorf("序列化输出文档失败: %w", err)
	}
	return warnings, nil
}

// EscapeMarkup 在文本进入样式化后端之前转义 & < > 三个字符，
// 防止译文恰好包含这些字符时产生畸形标记
func EscapeMarkup(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// DecodeMarkup 解码极简标记文本。
// 出现未转义的裸 < 或 > 视为畸形标记并返回错误。
func DecodeMarkup(text string) (string, error) {
	if strings.ContainsAny(text, "<>") {
		return "", fmt.Errorf("文本包含未转义的标记字符")
	}
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return text, nil
}
