package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeService 测试用翻译服务：记录调用并按配置返回结果
type fakeService struct {
	mu       sync.Mutex
	calls    []string
	failWith error
	failOn   map[string]bool // 按原文触发失败
	prefix   string
}

func newFakeService() *fakeService {
	return &fakeService{prefix: "ES:"}
}

func (f *fakeService) Translate(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)

	if f.failWith != nil {
		return "", f.failWith
	}
	if f.failOn[text] {
		return "", errors.New("模拟的服务错误")
	}
	return f.prefix + text, nil
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// TestTranslateTextSingleCall 测试短文本只调用一次服务
func TestTranslateTextSingleCall(t *testing.T) {
	t.Log("测试短文本单次调用...")

	service := newFakeService()
	tr := NewChunkedTranslator(service)

	result, warnings := tr.TranslateText(context.Background(), "Hello world.")
	if len(warnings) != 0 {
		t.Fatalf("不应产生警告: %v", warnings)
	}
	if result != "ES:Hello world." {
		t.Errorf("翻译结果不正确: %q", result)
	}
	if service.callCount() != 1 {
		t.Errorf("短文本应恰好调用一次服务，实际 %d 次", service.callCount())
	}

	t.Log("✓ 短文本单次调用")
}

// TestTranslateTextMultiByteSingleCall 测试多字节文本按字符数判定是否分块
func TestTranslateTextMultiByteSingleCall(t *testing.T) {
	service := newFakeService()
	tr := NewChunkedTranslator(service)
	tr.MaxChunkChars = 60

	// 51 个字符，101 个字节：按字符数计不需要分块
	text := strings.Repeat("ñ", 50) + "."
	result, warnings := tr.TranslateText(context.Background(), text)
	if len(warnings) != 0 {
		t.Fatalf("不应产生警告: %v", warnings)
	}
	if service.callCount() != 1 {
		t.Errorf("字符数未超限时应恰好调用一次服务，实际 %d 次", service.callCount())
	}
	if result != "ES:"+text {
		t.Errorf("翻译结果不正确: %q", result)
	}

	t.Log("✓ 分块阈值按字符数计")
}

// TestTranslateTextEmpty 测试空文本不调用服务
func TestTranslateTextEmpty(t *testing.T) {
	service := newFakeService()
	tr := NewChunkedTranslator(service)

	result, warnings := tr.TranslateText(context.Background(), "   ")
	if result != "" || len(warnings) != 0 {
		t.Errorf("空文本应返回空结果: %q, %v", result, warnings)
	}
	if service.callCount() != 0 {
		t.Errorf("空文本不应调用服务，实际 %d 次", service.callCount())
	}
}

// TestTranslateTextChunked 测试长文本分块翻译与顺序重组
func TestTranslateTextChunked(t *testing.T) {
	t.Log("测试长文本分块翻译...")

	service := newFakeService()
	tr := NewChunkedTranslator(service)
	tr.MaxChunkChars = 30
	tr.ChunkDelay = 0

	text := "Sentence one here. Sentence two here. Sentence three here."
	result, warnings := tr.TranslateText(context.Background(), text)
	if len(warnings) != 0 {
		t.Fatalf("不应产生警告: %v", warnings)
	}
	if service.callCount() < 2 {
		t.Fatalf("长文本应调用多次服务，实际 %d 次", service.callCount())
	}

	// 译文按分块顺序以空格拼接
	var expected []string
	for _, chunk := range service.calls {
		expected = append(expected, "ES:"+chunk)
	}
	if result != strings.Join(expected, " ") {
		t.Errorf("重组顺序不正确:\n期望: %q\n实际: %q", strings.Join(expected, " "), result)
	}

	t.Logf("✓ 分块 %d 次，顺序保持", service.callCount())
}

// TestTranslateTextFailurePassThrough 测试翻译失败时回退原文
func TestTranslateTextFailurePassThrough(t *testing.T) {
	t.Log("测试失败回退原文...")

	service := newFakeService()
	service.failWith = errors.New("服务不可用")
	tr := NewChunkedTranslator(service)

	text := "This should survive."
	result, warnings := tr.TranslateText(context.Background(), text)
	if result != text {
		t.Errorf("失败时应返回原文，实际: %q", result)
	}
	if len(warnings) != 1 {
		t.Fatalf("期望 1 条警告，实际 %d", len(warnings))
	}

	var chunkErr *ChunkTranslationError
	if !errors.As(warnings[0], &chunkErr) {
		t.Errorf("警告类型应为 *ChunkTranslationError，实际: %T", warnings[0])
	}

	t.Log("✓ 失败回退到原文并记录警告")
}

// TestTranslateTextPartialChunkFailure 测试部分分块失败时其余分块不受影响
func TestTranslateTextPartialChunkFailure(t *testing.T) {
	t.Log("测试部分分块失败...")

	service := newFakeService()
	tr := NewChunkedTranslator(service)
	tr.MaxChunkChars = 25
	tr.ChunkDelay = 0

	text := "Alpha sentence here. Beta sentence here. Gamma sentence here."

	// 先跑一遍拿到实际分块，再让第二块失败
	chunks := PackChunks(SplitSentences(text), tr.MaxChunkChars)
	if len(chunks) < 3 {
		t.Fatalf("测试前提：至少 3 个分块，实际 %d", len(chunks))
	}
	service.failOn = map[string]bool{chunks[1]: true}

	result, warnings := tr.TranslateText(context.Background(), text)
	if len(warnings) != 1 {
		t.Fatalf("期望 1 条警告，实际 %d: %v", len(warnings), warnings)
	}

	// 失败的分块保留原文，其余分块已翻译
	if !strings.Contains(result, chunks[1]) {
		t.Errorf("失败分块应以原文出现在结果中: %q", result)
	}
	if !strings.Contains(result, "ES:"+chunks[0]) || !strings.Contains(result, "ES:"+chunks[2]) {
		t.Errorf("其余分块应正常翻译: %q", result)
	}

	t.Log("✓ 失败隔离在单个分块内")
}

// TestTranslatePages 测试逐页翻译保留布局属性
func TestTranslatePages(t *testing.T) {
	t.Log("测试逐页翻译...")

	service := newFakeService()
	tr := NewChunkedTranslator(service)

	pages := [][]ParagraphUnit{
		{
			{Text: "Chapter 1", Kind: KindTitle, FontSize: 16},
			{Text: "Body text.", Kind: KindParagraph, FontSize: 10},
		},
		{
			{Text: "1. item", Kind: KindListItem, FontSize: 10},
		},
	}

	var progressCalls []int
	translated, warnings, err := tr.TranslatePages(context.Background(), pages, func(done, total int) {
		progressCalls = append(progressCalls, done)
		if total != 2 {
			t.Errorf("总页数应为 2，实际 %d", total)
		}
	})
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("不应产生警告: %v", warnings)
	}

	if len(translated) != 2 || len(translated[0]) != 2 || len(translated[1]) != 1 {
		t.Fatal("页结构应保持不变")
	}

	// Kind 和字号原样保留，文本已翻译
	first := translated[0][0]
	if first.Kind != KindTitle || first.FontSize != 16 {
		t.Errorf("布局属性应保留: %+v", first)
	}
	if first.Text != "ES:Chapter 1" {
		t.Errorf("文本应已翻译: %q", first.Text)
	}

	// 进度按页递增
	if len(progressCalls) != 2 || progressCalls[0] != 1 || progressCalls[1] != 2 {
		t.Errorf("进度回调不正确: %v", progressCalls)
	}

	// 输入未被修改
	if pages[0][0].Text != "Chapter 1" {
		t.Error("翻译不应修改输入序列")
	}

	t.Log("✓ 逐页翻译正确")
}

// TestTranslatePagesParagraphFailureIsolated 测试单个段落失败不影响其他段落
func TestTranslatePagesParagraphFailureIsolated(t *testing.T) {
	service := newFakeService()
	service.failOn = map[string]bool{"Bad paragraph.": true}
	tr := NewChunkedTranslator(service)

	pages := [][]ParagraphUnit{
		{
			{Text: "Good one.", Kind: KindParagraph, FontSize: 10},
			{Text: "Bad paragraph.", Kind: KindParagraph, FontSize: 10},
			{Text: "Good two.", Kind: KindParagraph, FontSize: 10},
		},
	}

	translated, warnings, err := tr.TranslatePages(context.Background(), pages, nil)
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("期望 1 条警告，实际 %d", len(warnings))
	}

	units := translated[0]
	if units[0].Text != "ES:Good one." || units[2].Text != "ES:Good two." {
		t.Error("其他段落应正常翻译")
	}
	if units[1].Text != "Bad paragraph." {
		t.Errorf("失败段落应保留原文，实际: %q", units[1].Text)
	}

	t.Log("✓ 段落失败被隔离")
}

// TestTranslatePagesCancellation 测试取消后返回错误并丢弃部分结果
func TestTranslatePagesCancellation(t *testing.T) {
	t.Log("测试取消...")

	service := newFakeService()
	tr := NewChunkedTranslator(service)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := [][]ParagraphUnit{
		{{Text: "Something.", Kind: KindParagraph, FontSize: 10}},
	}

	translated, warnings, err := tr.TranslatePages(ctx, pages, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("期望 context.Canceled，实际: %v", err)
	}
	if translated != nil || warnings != nil {
		t.Error("取消时应丢弃部分结果")
	}

	t.Log("✓ 取消行为正确")
}

// TestTranslatePagesConcurrent 测试并行模式下段落顺序不变
func TestTranslatePagesConcurrent(t *testing.T) {
	t.Log("测试并行翻译顺序...")

	service := newFakeService()
	tr := NewChunkedTranslator(service)
	tr.Concurrency = 4

	units := make([]ParagraphUnit, 20)
	for i := range units {
		units[i] = ParagraphUnit{
			Text:     fmt.Sprintf("Paragraph number %d.", i),
			Kind:     KindParagraph,
			FontSize: 10,
		}
	}

	translated, warnings, err := tr.TranslatePages(context.Background(), [][]ParagraphUnit{units}, nil)
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("不应产生警告: %v", warnings)
	}

	for i, unit := range translated[0] {
		want := fmt.Sprintf("ES:Paragraph number %d.", i)
		if unit.Text != want {
			t.Errorf("第 %d 个段落顺序错乱: 期望 %q，实际 %q", i+1, want, unit.Text)
		}
	}

	t.Logf("✓ %d 个段落并行翻译后顺序保持", len(units))
}
