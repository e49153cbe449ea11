package pdf

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/signintech/gopdf"
)

// 页面参数（点，A4 纵向）
const (
	marginLeft   = 42.5
	marginTop    = 42.5
	marginRight  = 42.5
	marginBottom = 56.0
)

// ParagraphOptions 段落写入选项（长度单位：点）
type ParagraphOptions struct {
	FontSize   float64
	Bold       bool
	Center     bool
	Indent     float64
	Bullet     bool
	LineHeight float64
	SpaceAfter float64
}

// StoryBuilder 基于 gopdf 的流式文档构建器：按顺序写入
// 段落/空白/分页原语，自动换行和换页。使用系统 TTF 字体，
// 对任意 Unicode 文本有效。
type StoryBuilder struct {
	pdf      *gopdf.GoPdf
	font     *FontPair
	boldName string
	y        float64
	pageW    float64
	pageH    float64
}

// NewStoryBuilder 创建构建器并加载系统拉丁字体。
// 找不到可用字体时返回错误，由调用方回退到核心字体后端。
func NewStoryBuilder() (*StoryBuilder, error) {
	font, err := FindLatinFont()
	if err != nil {
		return nil, err
	}

	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := doc.AddTTFFont(font.Family, font.Regular); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}

	boldName := font.Family
	if font.Bold != font.Regular {
		boldName = font.Family + "-Bold"
		if err := doc.AddTTFFont(boldName, font.Bold); err != nil {
			log.Printf("警告：加载粗体字体失败，使用常规体: %v", err)
			boldName = font.Family
		}
	}

	builder := &StoryBuilder{
		pdf:      doc,
		font:     font,
		boldName: boldName,
		pageW:    gopdf.PageSizeA4.W,
		pageH:    gopdf.PageSizeA4.H,
	}
	builder.AddPage()
	return builder, nil
}

// SetInfo 写入文档元数据
func (b *StoryBuilder) SetInfo(title, author string) {
	b.pdf.SetInfo(gopdf.PdfInfo{
		Title:   title,
		Author:  author,
		Creator: "traductor-pdf-es",
	})
}

// AddPage 开始新页面
func (b *StoryBuilder) AddPage() {
	b.pdf.AddPage()
	b.y = marginTop
}

// AddSpacer 插入垂直空白
func (b *StoryBuilder) AddSpacer(height float64) {
	b.y += height
	if b.y > b.pageH-marginBottom {
		b.AddPage()
	}
}

// WriteParagraph 写入一个自动换行的段落
func (b *StoryBuilder) WriteParagraph(text string, opts ParagraphOptions) error {
	family := b.font.Family
	if opts.Bold {
		family = b.boldName
	}
	if err := b.pdf.SetFont(family, "", opts.FontSize); err != nil {
		return fmt.Errorf("设置字体失败: %w", err)
	}

	lineHeight := opts.LineHeight
	if lineHeight <= 0 {
		lineHeight = opts.FontSize * 1.4
	}

	left := marginLeft + opts.Indent
	width := b.pageW - left - marginRight
	if opts.Bullet {
		text = "• " + text
	}

	for _, line := range b.wrapText(text, width) {
		if b.y+lineHeight > b.pageH-marginBottom {
			b.AddPage()
			if err := b.pdf.SetFont(family, "", opts.FontSize); err != nil {
				return fmt.Errorf("设置字体失败: %w", err)
			}
		}

		x := left
		if opts.Center {
			if lineWidth, err := b.pdf.MeasureTextWidth(line); err == nil && lineWidth < width {
				x = left + (width-lineWidth)/2
			}
		}

		b.pdf.SetXY(x, b.y)
		if err := b.pdf.Cell(nil, line); err != nil {
			return fmt.Errorf("写入文本失败: %w", err)
		}
		b.y += lineHeight
	}

	b.y += opts.SpaceAfter
	return nil
}

// wrapText 按可用宽度贪心断行
func (b *StoryBuilder) wrapText(text string, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		candidate := current + " " + word
		width, err := b.pdf.MeasureTextWidth(candidate)
		if err == nil && width <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}

	lines = append(lines, current)
	return lines
}

// Output 序列化文档字节
func (b *StoryBuilder) Output(w io.Writer) error {
	_, err := b.pdf.WriteTo(w)
	return err
}
