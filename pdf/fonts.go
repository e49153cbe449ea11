package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// FontPair 一组常规/粗体字体文件
type FontPair struct {
	Family   string
	Regular  string
	Bold     string
	BasePath string
}

// 候选字体：按优先级排列的拉丁字体（覆盖西班牙语的重音字符）。
// 粗体文件缺失时回退到常规体。
var latinFontCandidates = []FontPair{
	{Family: "DejaVuSans", Regular: "DejaVuSans.ttf", Bold: "DejaVuSans-Bold.ttf"},
	{Family: "LiberationSans", Regular: "LiberationSans-Regular.ttf", Bold: "LiberationSans-Bold.ttf"},
	{Family: "FreeSans", Regular: "FreeSans.ttf", Bold: "FreeSansBold.ttf"},
	{Family: "Arial", Regular: "arial.ttf", Bold: "arialbd.ttf"},
	{Family: "Verdana", Regular: "verdana.ttf", Bold: "verdanab.ttf"},
}

// systemFontDirs 返回当前系统的字体搜索目录
func systemFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{filepath.Join(os.Getenv("WINDIR"), "Fonts")}
	case "darwin":
		return []string{"/System/Library/Fonts", "/Library/Fonts"}
	default:
		return []string{
			"/usr/share/fonts",
			"/usr/local/share/fonts",
		}
	}
}

// FindLatinFont 在系统字体目录中查找第一个可用的拉丁字体。
// 字体目录按候选文件名递归搜索。
func FindLatinFont() (*FontPair, error) {
	for _, dir := range systemFontDirs() {
		if _, err := os.Stat(dir); err != nil {
			continue
		}

		found := make(map[string]string)
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			name := info.Name()
			if _, exists := found[name]; !exists {
				found[name] = path
			}
			return nil
		})

		for _, candidate := range latinFontCandidates {
			regular, ok := found[candidate.Regular]
			if !ok {
				continue
			}
			pair := candidate
			pair.Regular = regular
			if bold, ok := found[candidate.Bold]; ok {
				pair.Bold = bold
			} else {
				pair.Bold = regular
			}
			pair.BasePath = dir
			return &pair, nil
		}
	}

	return nil, fmt.Errorf("没有找到可用的拉丁字体")
}
