package translator

import (
	"bytes"
	"strings"
	"testing"
)

// TestGofpdfBackendOutput 测试默认后端生成有效的 PDF 字节
func TestGofpdfBackendOutput(t *testing.T) {
	t.Log("测试默认渲染后端...")

	backend := NewGofpdfBackend()
	if err := backend.Begin(DocumentMeta{Title: "Título de prueba", Author: "Autor"}); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	// 带重音字符的西班牙语文本
	if err := backend.AddParagraph("Traducción española: años, niño, café.", paragraphStyle); err != nil {
		t.Fatalf("写入段落失败: %v", err)
	}
	if err := backend.AddSpacer(2.5); err != nil {
		t.Fatalf("写入空白失败: %v", err)
	}
	if err := backend.PageBreak(); err != nil {
		t.Fatalf("换页失败: %v", err)
	}
	if err := backend.AddParagraph("Second page.", titleStyle); err != nil {
		t.Fatalf("写入第二页失败: %v", err)
	}

	var buf bytes.Buffer
	if err := backend.Output(&buf); err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "%PDF-") {
		t.Error("输出不是有效的 PDF 字节流")
	}

	t.Logf("✓ 生成 %d 字节的 PDF", buf.Len())
}

// TestGofpdfBackendMalformedMarkup 测试畸形标记文本被拒绝
func TestGofpdfBackendMalformedMarkup(t *testing.T) {
	backend := NewGofpdfBackend()
	if err := backend.Begin(DocumentMeta{}); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}

	// 裸 < 未经转义，后端应返回错误（渲染器据此写入占位符）
	if err := backend.AddParagraph("raw < markup", paragraphStyle); err == nil {
		t.Error("畸形标记应返回错误")
	}

	// 正确转义的同一文本可以写入
	if err := backend.AddParagraph(EscapeMarkup("raw < markup"), paragraphStyle); err != nil {
		t.Errorf("转义后的文本应可写入: %v", err)
	}

	t.Log("✓ 标记约定正确")
}

// TestGofpdfBackendOutputUninitialized 测试未初始化时输出报错
func TestGofpdfBackendOutputUninitialized(t *testing.T) {
	var buf bytes.Buffer
	if err := NewGofpdfBackend().Output(&buf); err == nil {
		t.Error("未初始化的后端输出应报错")
	}
}
