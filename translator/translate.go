package translator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultChunkDelay 同一长文本的相邻分块调用之间的固定延迟，
// 用于降低触发翻译服务速率限制的概率。单分块文本不需要延迟。
const DefaultChunkDelay = 200 * time.Millisecond

// ChunkedTranslator 分块翻译器：把超长段落按句子边界切成
// 不超过 MaxChunkChars 的分块，逐块翻译后重新拼接
type ChunkedTranslator struct {
	Service       Service
	MaxChunkChars int
	ChunkDelay    time.Duration
	// Concurrency 同一页内并行翻译的段落数上限。
	// 1 表示严格顺序执行。
	Concurrency int
}

// NewChunkedTranslator 创建使用默认参数的分块翻译器
func NewChunkedTranslator(service Service) *ChunkedTranslator {
	return &ChunkedTranslator{
		Service:       service,
		MaxChunkChars: DefaultMaxChunkChars,
		ChunkDelay:    DefaultChunkDelay,
		Concurrency:   1,
	}
}

// TranslateText 翻译一段文本。
// 长度不超过 MaxChunkChars 时只调用一次服务；否则按句子切块，
// 逐块翻译并以单个空格拼接。失败的分块使用原文替代并返回
// 对应的 *ChunkTranslationError 警告，翻译失败从不中断流水线。
func (t *ChunkedTranslator) TranslateText(ctx context.Context, text string) (string, []error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	maxChars := t.MaxChunkChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	// 短文本：单次调用（字符数按 Unicode 码点计）
	if utf8.RuneCountInString(text) <= maxChars {
		translated, err := t.Service.Translate(ctx, text)
		if err != nil {
			return text, []error{&ChunkTranslationError{Chunk: 0, Err: err}}
		}
		return translated, nil
	}

	// 长文本：按句子边界切块后逐块翻译
	chunks := PackChunks(SplitSentences(text), maxChars)
	results := make([]string, 0, len(chunks))
	var warnings []error

	for i, chunk := range chunks {
		if i > 0 && t.ChunkDelay > 0 {
			select {
			case <-ctx.Done():
				return text, append(warnings, ctx.Err())
			case <-time.After(t.ChunkDelay):
			}
		}

		translated, err := t.Service.Translate(ctx, chunk)
		if err != nil {
			warnings = append(warnings, &ChunkTranslationError{Chunk: i, Err: err})
			results = append(results, chunk)
			continue
		}
		results = append(results, translated)
	}

	return strings.Join(results, " "), warnings
}

// PageProgress 页级翻译进度回调：(已完成页数, 总页数)
type PageProgress func(done, total int)

// TranslatePages 翻译逐页的段落单元，返回全新的序列。
// Kind 和字号原样保留，布局决策与翻译结果互不影响。
// 每个段落翻译之间检查取消；取消时丢弃部分结果并返回错误。
func (t *ChunkedTranslator) TranslatePages(ctx context.Context, pages [][]ParagraphUnit, onProgress PageProgress) ([][]ParagraphUnit, []error, error) {
	translated := make([][]ParagraphUnit, 0, len(pages))
	var warnings []error

	for pageIdx, units := range pages {
		pageUnits, pageWarnings, err := t.translatePage(ctx, units)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, pageWarnings...)
		translated = append(translated, pageUnits)

		if onProgress != nil {
			onProgress(pageIdx+1, len(pages))
		}
	}

	return translated, warnings, nil
}

// translatePage 翻译一页的段落单元。
// Concurrency > 1 时用信号量限制并行度，结果按原始下标写回，
// 段落顺序不受调度影响。
func (t *ChunkedTranslator) translatePage(ctx context.Context, units []ParagraphUnit) ([]ParagraphUnit, []error, error) {
	result := make([]ParagraphUnit, len(units))
	warningsPer := make([][]error, len(units))

	if t.Concurrency <= 1 {
		for i, unit := range units {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			text, warns := t.TranslateText(ctx, unit.Text)
			result[i] = ParagraphUnit{Text: text, Kind: unit.Kind, FontSize: unit.FontSize}
			warningsPer[i] = warns
		}
	} else {
		sem := make(chan struct{}, t.Concurrency)
		var wg sync.WaitGroup
		for i, unit := range units {
			if err := ctx.Err(); err != nil {
				wg.Wait()
				return nil, nil, err
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, u ParagraphUnit) {
				defer wg.Done()
				defer func() { <-sem }()
				text, warns := t.TranslateText(ctx, u.Text)
				result[idx] = ParagraphUnit{Text: text, Kind: u.Kind, FontSize: u.FontSize}
				warningsPer[idx] = warns
			}(i, unit)
		}
		wg.Wait()
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	var warnings []error
	for i, warns := range warningsPer {
		for _, w := range warns {
			log.Printf("警告：第 %d 个段落：%v", i+1, w)
			warnings = append(warnings, w)
		}
	}
	return result, warnings, nil
}
