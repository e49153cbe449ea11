package translator

// Kind 段落单元的语义类型
type Kind int

const (
	// KindParagraph 普通正文段落（默认类型）
	KindParagraph Kind = iota
	// KindTitle 大标题（大字号或粗体的短文本）
	KindTitle
	// KindSubtitle 小标题
	KindSubtitle
	// KindListItem 列表项（带编号或项目符号）
	KindListItem
)

// String 返回类型的字符串表示
func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "Title"
	case KindSubtitle:
		return "Subtitle"
	case KindListItem:
		return "ListItem"
	case KindParagraph:
		return "Paragraph"
	default:
		return "Unknown"
	}
}

// Span 从 PDF 页面提取的一段连续文本，带字体和位置信息。
// 提取后不可变，仅作为分类器的输入。
type Span struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"bold"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Page     int     `json:"page"`
}

// ClassifiedSpan 带语义类型的文本段
type ClassifiedSpan struct {
	Span
	Kind Kind `json:"kind"`
}

// ParagraphUnit 重组后的段落级单元，是翻译和渲染的原子单位。
// Text 是合并进来的各 Span 文本按原顺序以空格连接的结果；
// Kind 取最后一个贡献 Span 的类型；FontSize 取第一个贡献 Span 的字号。
type ParagraphUnit struct {
	Text     string  `json:"text"`
	Kind     Kind    `json:"kind"`
	FontSize float64 `json:"font_size"`
}

// DocumentMeta 文档元数据（从源 PDF 的 Info 字典提取）
type DocumentMeta struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Pages  int    `json:"pages"`
}
