package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service 翻译服务接口。实现必须把网络错误原样返回，
// 由上层决定回退策略（分块翻译失败时使用原文）。
type Service interface {
	Translate(ctx context.Context, text string) (string, error)
}

// DefaultTranslateURL 免费 Google 翻译端点
const DefaultTranslateURL = "https://translate.googleapis.com/translate_a/single"

// GoogleClient Google 翻译客户端（带缓存、超时和重试退避）
type GoogleClient struct {
	APIURL        string
	SourceLang    string
	TargetLang    string
	RetryTimes    int
	RetryInterval time.Duration
	HTTPClient    *http.Client
	Cache         *Cache
}

// NewGoogleClient 创建英语→西班牙语的翻译客户端
func NewGoogleClient() *GoogleClient {
	return &GoogleClient{
		APIURL:        DefaultTranslateURL,
		SourceLang:    "en",
		TargetLang:    "es",
		RetryTimes:    3,
		RetryInterval: 2 * time.Second,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithCache 设置缓存
func (c *GoogleClient) WithCache(cache *Cache) *GoogleClient {
	c.Cache = cache
	return c
}

// WithRetry 设置重试参数
func (c *GoogleClient) WithRetry(times int, interval time.Duration) *GoogleClient {
	c.RetryTimes = times
	c.RetryInterval = interval
	return c
}

// Translate 翻译文本（带缓存和指数退避重试）
func (c *GoogleClient) Translate(ctx context.Context, text string) (string, error) {
	cacheKey := TranslationCacheKey(text, c.SourceLang, c.TargetLang)
	if cached, ok := c.Cache.Get(cacheKey); ok {
		return cached, nil
	}

	var lastErr error
	interval := c.RetryInterval
	for attempt := 0; attempt <= c.RetryTimes; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(interval):
			}
			interval *= 2
		}

		result, err := c.translateOnce(ctx, text)
		if err == nil {
			c.Cache.Set(cacheKey, result)
			return result, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}

	return "", fmt.Errorf("翻译失败（重试 %d 次后）: %w", c.RetryTimes, lastErr)
}

// translateOnce 执行一次翻译请求
func (c *GoogleClient) translateOnce(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", c.SourceLang)
	params.Set("tl", c.TargetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("翻译请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("翻译服务返回错误 (状态码 %d): %s", resp.StatusCode, string(body))
	}

	return parseTranslateResponse(body)
}

// parseTranslateResponse 解析嵌套数组形式的响应：
// [[["译文1","原文1",...],["译文2","原文2",...],...],...]
func parseTranslateResponse(body []byte) (string, error) {
	var raw []interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("解析翻译响应失败: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("翻译服务未返回结果")
	}

	segments, ok := raw[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("翻译响应格式不正确")
	}

	var builder strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if translated, ok := parts[0].(string); ok {
			builder.WriteString(translated)
		}
	}

	result := builder.String()
	if result == "" {
		return "", fmt.Errorf("翻译服务返回了空结果")
	}
	return result, nil
}
