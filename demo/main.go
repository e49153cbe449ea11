//go:build ignore
// +build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Moritapr/traductor-pdf-es/translator"
)

func main() {
	inputPath := flag.String("in", "./sample.pdf", "输入 PDF 文件路径")
	outputDir := flag.String("out", "./output", "输出目录")
	cacheDir := flag.String("cache", "./cache", "翻译缓存目录")
	unicode := flag.Bool("unicode", false, "使用 TTF 字体的 Unicode 渲染后端")
	flag.Parse()

	fmt.Println("=== PDF 英译西 Demo ===")
	fmt.Println()

	if _, err := os.Stat(*inputPath); os.IsNotExist(err) {
		log.Fatalf("❌ PDF文件不存在: %s", *inputPath)
	}
	fmt.Printf("📄 输入文件: %s\n", *inputPath)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("❌ 创建输出目录失败: %v", err)
	}

	// 创建缓存
	cache, err := translator.NewCache(*cacheDir)
	if err != nil {
		log.Fatalf("❌ 创建缓存失败: %v", err)
	}
	fmt.Printf("💾 缓存已初始化 (目录: %s)\n", *cacheDir)

	// 创建翻译客户端
	client := translator.NewGoogleClient().WithCache(cache)
	fmt.Printf("🤖 翻译客户端已创建 (en -> es)\n")

	pipeline := translator.NewPipeline(client)
	if *unicode {
		pipeline.Config.Backend = translator.NewGopdfBackend()
		fmt.Printf("🔤 使用 Unicode 渲染后端\n")
	}

	// 页数检查在处理之前进行
	pages, err := pipeline.CheckPageLimit(*inputPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Printf("✅ 页数检查通过，共 %d 页\n", pages)

	// Ctrl+C 取消翻译
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	base := strings.TrimSuffix(filepath.Base(*inputPath), filepath.Ext(*inputPath))
	outputPath := filepath.Join(*outputDir, base+"_TRADUCIDO_ES.pdf")

	fmt.Printf("\n🚀 开始翻译...\n")
	startTime := time.Now()

	onProgress := func(event translator.ProgressEvent) {
		fmt.Printf("   [%s] %3d%% %s\n", event.Stage, event.Percent, event.Message)
	}

	report, err := pipeline.Translate(ctx, *inputPath, outputPath, onProgress)
	if err != nil {
		log.Fatalf("❌ 翻译失败: %v", err)
	}

	fmt.Printf("\n🎉 翻译完成！耗时: %v\n", time.Since(startTime))
	fmt.Printf("📊 统计: %d 页，%d 个段落单元\n", report.Pages, report.Units)
	if report.Meta.Title != "" {
		fmt.Printf("📖 文档标题: %s\n", report.Meta.Title)
	}

	if len(report.Warnings) > 0 {
		fmt.Printf("\n⚠️  警告 (%d 条):\n", len(report.Warnings))
		for i, w := range report.Warnings {
			fmt.Printf("   %d. %s\n", i+1, w)
		}
	}

	if info, err := os.Stat(outputPath); err == nil {
		fmt.Printf("\n📁 输出文件: %s (%.2f KB)\n", outputPath, float64(info.Size())/1024)
	}
}
