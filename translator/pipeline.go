package translator

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMaxPages 允许处理的最大页数。超过上限的文档被整体拒绝，
// 不做截断处理。
const DefaultMaxPages = 400

// 各流水线阶段的进度里程碑：提取完成 20%，翻译按页插值到 80%，
// 渲染完成 100%
const (
	progressValidated    = 5
	progressExtracted    = 20
	progressTranslateEnd = 80
	progressRendering    = 85
	progressDone         = 100
)

// ProgressEvent 流水线进度事件。核心从不直接读写任何 UI 状态，
// 调用方（CLI、Web 处理器、测试）自行订阅并决定如何展示。
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc 进度事件回调
type ProgressFunc func(ProgressEvent)

// Report 一次翻译运行的汇总结果
type Report struct {
	Meta     DocumentMeta `json:"meta"`
	Pages    int          `json:"pages"`
	Units    int          `json:"units"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Config 流水线配置。零值字段使用默认参数。
type Config struct {
	// MaxPages 页数上限，默认 400
	MaxPages int
	// GapThreshold 段落重组的垂直间距阈值，默认 15.0
	GapThreshold float64
	// MaxChunkChars 单次翻译调用的字符上限，默认 4500
	MaxChunkChars int
	// ChunkDelay 长文本分块调用之间的延迟，默认 200ms
	ChunkDelay time.Duration
	// Concurrency 页内段落的并行翻译上限，默认 1（顺序执行）
	Concurrency int
	// Backend 渲染后端，默认使用核心字体的 gofpdf 后端
	Backend Backend
}

// Pipeline 完整的 PDF 翻译流水线：
// 提取 → 分类 → 段落重组 → 分块翻译 → 渲染
type Pipeline struct {
	Service Service
	Config  Config
}

// NewPipeline 创建使用默认配置的流水线
func NewPipeline(service Service) *Pipeline {
	return &Pipeline{Service: service}
}

// PageCount 返回 PDF 的页数（基于 pdfcpu，不做内容提取）
func PageCount(path string) (int, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("无法获取 PDF 页数: %w", err)
	}
	return count, nil
}

// CheckPageLimit 在任何提取开始之前校验文档页数。
// 超过上限返回 *PageCountExceededError。
func (p *Pipeline) CheckPageLimit(path string) (int, error) {
	limit := p.Config.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}

	count, err := PageCount(path)
	if err != nil {
		return 0, err
	}
	if count > limit {
		return count, &PageCountExceededError{Pages: count, Limit: limit}
	}
	return count, nil
}

// Translate 执行整条流水线并把生成的 PDF 写到 outputPath。
// 页级和分块级错误按既定策略就地恢复（空页/原文/占位符），
// 全部收集进 Report.Warnings；只有页数超限和文档整体无法打开
// 才是致命错误，此时不产生任何输出。
func (p *Pipeline) Translate(ctx context.Context, inputPath, outputPath string, onProgress ProgressFunc) (*Report, error) {
	emit := func(stage string, percent int, message string) {
		if onProgress != nil {
			onProgress(ProgressEvent{Stage: stage, Percent: percent, Message: message})
		}
	}

	// 1. 验证与页数检查（在任何提取之前）
	if err := api.ValidateFile(inputPath, model.NewDefaultConfiguration()); err != nil {
		log.Printf("警告：pdfcpu 验证未通过，继续尝试提取: %v", err)
	}

	pageCount, err := p.CheckPageLimit(inputPath)
	if err != nil {
		return nil, err
	}
	emit("validate", progressValidated, fmt.Sprintf("文档共 %d 页", pageCount))

	// 2. 提取文本段
	extractor := NewSpanExtractor()
	extracted, err := extractor.ExtractPages(inputPath)
	if err != nil {
		return nil, err
	}
	emit("extract", progressExtracted, "正在提取 PDF 文本...")

	report := &Report{Meta: extracted.Meta, Pages: len(extracted.Pages)}
	for _, w := range extracted.Warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}

	// 3. 分类与段落重组
	assembler := NewAssembler()
	if p.Config.GapThreshold > 0 {
		assembler.GapThreshold = p.Config.GapThreshold
	}

	pages := make([][]ParagraphUnit, 0, len(extracted.Pages))
	for _, spans := range extracted.Pages {
		pages = append(pages, assembler.AssemblePage(ClassifySpans(spans)))
	}
	for _, units := range pages {
		report.Units += len(units)
	}
	log.Printf("段落重组完成：共 %d 个段落单元", report.Units)

	// 4. 逐页翻译，进度在 20%–80% 之间按页插值
	chunked := NewChunkedTranslator(p.Service)
	if p.Config.MaxChunkChars > 0 {
		chunked.MaxChunkChars = p.Config.MaxChunkChars
	}
	if p.Config.ChunkDelay > 0 {
		chunked.ChunkDelay = p.Config.ChunkDelay
	}
	if p.Config.Concurrency > 0 {
		chunked.Concurrency = p.Config.Concurrency
	}

	translated, warnings, err := chunked.TranslatePages(ctx, pages, func(done, total int) {
		percent := progressExtracted + done*(progressTranslateEnd-progressExtracted)/total
		emit("translate", percent, fmt.Sprintf("正在翻译第 %d/%d 页...", done, total))
	})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}

	// 5. 渲染输出文档
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emit("render", progressRendering, "正在生成翻译后的 PDF...")

	backend := p.Config.Backend
	if backend == nil {
		backend = NewGofpdfBackend()
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer out.Close()

	renderer := NewDocumentRenderer(backend)
	renderWarnings, err := renderer.Render(translated, extracted.Meta, out)
	for _, w := range renderWarnings {
		report.Warnings = append(report.Warnings, w.Error())
	}
	if err != nil {
		return nil, err
	}

	emit("done", progressDone, "翻译完成")
	log.Printf("翻译完成：%s（%d 页，%d 个段落单元，%d 条警告）",
		outputPath, report.Pages, report.Units, len(report.Warnings))
	return report, nil
}
