package translator

import "fmt"

// PageExtractionError 表示解码器无法读取某一页的结构化文本。
// 按页恢复：该页降级为空白或回退提取结果，错误被记录为警告。
type PageExtractionError struct {
	Page int
	Err  error
}

func (e *PageExtractionError) Error() string {
	return fmt.Sprintf("无法提取第 %d 页的文本: %v", e.Page, e.Err)
}

func (e *PageExtractionError) Unwrap() error { return e.Err }

// ChunkTranslationError 表示某个分块的翻译调用失败。
// 恢复策略：该分块使用原文替代，流水线继续执行。
type ChunkTranslationError struct {
	Chunk int
	Err   error
}

func (e *ChunkTranslationError) Error() string {
	return fmt.Sprintf("第 %d 个分块翻译失败，已使用原文: %v", e.Chunk+1, e.Err)
}

func (e *ChunkTranslationError) Unwrap() error { return e.Err }

// PageCountExceededError 表示输入文档超过页数上限。
// 致命错误：在任何提取开始之前拒绝整个文档，不产生输出。
type PageCountExceededError struct {
	Pages int
	Limit int
}

func (e *PageCountExceededError) Error() string {
	return fmt.Sprintf("PDF 共 %d 页，超过允许的最大页数 %d", e.Pages, e.Limit)
}

// RenderError 表示某个段落单元无法序列化到输出文档。
// 恢复策略：用一个空白占位符替代该单元，继续生成文档。
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("第 %d 页的段落渲染失败，已用占位符替代: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
