package translator

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// 输出页面的版式参数（毫米，A4 纵向）
const (
	pageMarginLeft   = 15.0
	pageMarginTop    = 15.0
	pageMarginRight  = 15.0
	pageMarginBottom = 20.0
)

// GofpdfBackend 默认渲染后端：基于 gofpdf 的内置核心字体，
// 通过 cp1252 转换支持西班牙语的重音字符，无需外部字体文件
type GofpdfBackend struct {
	pdf       *gofpdf.Fpdf
	translate func(string) string
}

// NewGofpdfBackend 创建默认后端
func NewGofpdfBackend() *GofpdfBackend {
	return &GofpdfBackend{}
}

// Begin 初始化 A4 纵向文档并写入元数据
func (b *GofpdfBackend) Begin(meta DocumentMeta) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator("traductor-pdf-es", true)
	pdf.SetMargins(pageMarginLeft, pageMarginTop, pageMarginRight)
	pdf.SetAutoPageBreak(true, pageMarginBottom)
	pdf.AddPage()

	b.pdf = pdf
	b.translate = pdf.UnicodeTranslatorFromDescriptor("")
	return b.pdf.Error()
}

// AddParagraph 按样式写入一个段落
func (b *GofpdfBackend) AddParagraph(text string, style Style) error {
	decoded, err := DecodeMarkup(text)
	if err != nil {
		return err
	}

	fontStyle := ""
	if style.Bold {
		fontStyle = "B"
	}
	b.pdf.SetFont("Arial", fontStyle, style.FontSize)

	align := "J"
	switch style.Align {
	case AlignCenter:
		align = "C"
	case AlignLeft:
		align = "L"
	}

	content := b.translate(decoded)
	if style.Indent > 0 {
		b.pdf.SetLeftMargin(pageMarginLeft + style.Indent)
		b.pdf.SetX(pageMarginLeft + style.Indent)
	}
	if style.Bullet {
		content = b.translate("• ") + content
	}

	b.pdf.MultiCell(0, style.LineHeight, content, "", align, false)

	if style.Indent > 0 {
		b.pdf.SetLeftMargin(pageMarginLeft)
	}
	if style.SpaceAfter > 0 {
		b.pdf.Ln(style.SpaceAfter)
	}

	return b.pdf.Error()
}

// AddSpacer 写入指定高度的空白
func (b *GofpdfBackend) AddSpacer(height float64) error {
	b.pdf.Ln(height)
	return b.pdf.Error()
}

// PageBreak 强制换页
func (b *GofpdfBackend) PageBreak() error {
	b.pdf.AddPage()
	return b.pdf.Error()
}

// Output 序列化文档字节
func (b *GofpdfBackend) Output(w io.Writer) error {
	if b.pdf == nil {
		return fmt.Errorf("输出文档未初始化")
	}
	return b.pdf.Output(w)
}
