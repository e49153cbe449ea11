package translator

import (
	"fmt"
	"io"

	docpdf "github.com/Moritapr/traductor-pdf-es/pdf"
)

// 毫米到点的换算系数
const mmToPt = 72.0 / 25.4

// GopdfBackend 备选渲染后端：基于 signintech/gopdf 和系统 TTF
// 字体，完整支持 Unicode。需要系统中存在可用的拉丁字体。
type GopdfBackend struct {
	builder *docpdf.StoryBuilder
}

// NewGopdfBackend 创建 Unicode 后端
func NewGopdfBackend() *GopdfBackend {
	return &GopdfBackend{}
}

// Begin 初始化文档并加载系统字体
func (b *GopdfBackend) Begin(meta DocumentMeta) error {
	builder, err := docpdf.NewStoryBuilder()
	if err != nil {
		return fmt.Errorf("初始化 Unicode 后端失败: %w", err)
	}
	builder.SetInfo(meta.Title, meta.Author)
	b.builder = builder
	return nil
}

// AddParagraph 按样式写入一个段落
func (b *GopdfBackend) AddParagraph(text string, style Style) error {
	decoded, err := DecodeMarkup(text)
	if err != nil {
		return err
	}

	return b.builder.WriteParagraph(decoded, docpdf.ParagraphOptions{
		FontSize:   style.FontSize,
		Bold:       style.Bold,
		Center:     style.Align == AlignCenter,
		Indent:     style.Indent * mmToPt,
		Bullet:     style.Bullet,
		LineHeight: style.LineHeight * mmToPt,
		SpaceAfter: style.SpaceAfter * mmToPt,
	})
}

// AddSpacer 写入指定高度（毫米）的空白
func (b *GopdfBackend) AddSpacer(height float64) error {
	b.builder.AddSpacer(height * mmToPt)
	return nil
}

// PageBreak 强制换页
func (b *GopdfBackend) PageBreak() error {
	b.builder.AddPage()
	return nil
}

// Output 序列化文档字节
func (b *GopdfBackend) Output(w io.Writer) error {
	if b.builder == nil {
		return fmt.Errorf("输出文档未初始化")
	}
	return b.builder.Output(w)
}
