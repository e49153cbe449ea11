package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
)

// Cache 翻译缓存：以语言对加原文为键把译文落盘，
// 避免同一段落在重试或重复上传时反复调用翻译服务
type Cache struct {
	dir      string
	mutex    sync.RWMutex
	disabled bool
}

// NewCache 创建缓存，目录不存在时自动创建
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Disable 禁用缓存读取（用于强制重新翻译；写入仍然生效）
func (c *Cache) Disable() {
	c.disabled = true
}

// Get 获取缓存的译文
func (c *Cache) Get(key string) (string, bool) {
	if c == nil || c.disabled {
		return "", false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set 写入译文缓存
func (c *Cache) Set(key, value string) error {
	if c == nil {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	return os.WriteFile(c.path(key), []byte(value), 0644)
}

func (c *Cache) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".txt")
}

// TranslationCacheKey 生成翻译缓存键：语言对加原文
func TranslationCacheKey(text, sourceLang, targetLang string) string {
	return sourceLang + "|" + targetLang + "|" + text
}
