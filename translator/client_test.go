package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// googleResponse 模拟免费翻译端点的嵌套数组响应
const googleResponse = `[[["Hola ","Hello ",null,null,10],["mundo.","world.",null,null,10]],null,"en"]`

// TestGoogleClientTranslate 测试翻译请求与响应解析
func TestGoogleClientTranslate(t *testing.T) {
	t.Log("测试翻译客户端...")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("解析表单失败: %v", err)
		}
		if r.Form.Get("sl") != "en" || r.Form.Get("tl") != "es" {
			t.Errorf("语言参数不正确: sl=%s tl=%s", r.Form.Get("sl"), r.Form.Get("tl"))
		}
		if r.Form.Get("q") != "Hello world." {
			t.Errorf("原文参数不正确: %q", r.Form.Get("q"))
		}
		w.Write([]byte(googleResponse))
	}))
	defer server.Close()

	client := NewGoogleClient()
	client.APIURL = server.URL

	result, err := client.Translate(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if result != "Hola mundo." {
		t.Errorf("译文拼接不正确: %q", result)
	}

	t.Logf("✓ 译文: %s", result)
}

// TestGoogleClientRetry 测试失败后的重试退避
func TestGoogleClientRetry(t *testing.T) {
	t.Log("测试重试...")

	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(googleResponse))
	}))
	defer server.Close()

	client := NewGoogleClient().WithRetry(3, 5*time.Millisecond)
	client.APIURL = server.URL

	result, err := client.Translate(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("重试后仍失败: %v", err)
	}
	if result != "Hola mundo." {
		t.Errorf("译文不正确: %q", result)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("期望 3 次请求（2 失败 + 1 成功），实际 %d", got)
	}

	t.Log("✓ 前两次失败后第三次成功")
}

// TestGoogleClientRetryExhausted 测试重试耗尽后返回错误
func TestGoogleClientRetryExhausted(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGoogleClient().WithRetry(2, time.Millisecond)
	client.APIURL = server.URL

	if _, err := client.Translate(context.Background(), "text"); err == nil {
		t.Fatal("重试耗尽后应返回错误")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("期望 3 次请求（首次 + 2 次重试），实际 %d", got)
	}

	t.Log("✓ 重试耗尽后报错")
}

// TestGoogleClientCache 测试缓存命中时不发请求
func TestGoogleClientCache(t *testing.T) {
	t.Log("测试翻译缓存...")

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(googleResponse))
	}))
	defer server.Close()

	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatalf("创建缓存失败: %v", err)
	}

	client := NewGoogleClient().WithCache(cache)
	client.APIURL = server.URL

	first, err := client.Translate(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("首次翻译失败: %v", err)
	}

	second, err := client.Translate(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("二次翻译失败: %v", err)
	}

	if first != second {
		t.Errorf("缓存结果不一致: %q vs %q", first, second)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("第二次应命中缓存，期望 1 次请求，实际 %d", got)
	}

	t.Log("✓ 缓存命中，未发起第二次请求")
}

// TestGoogleClientCancellation 测试取消后立即返回
func TestGoogleClientCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGoogleClient().WithRetry(5, time.Hour)
	client.APIURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Translate(ctx, "text")
		done <- err
	}()

	// 首次请求失败后客户端进入退避等待，此时取消
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("取消后应返回错误")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("取消后客户端未及时返回")
	}

	t.Log("✓ 退避等待期间取消立即返回")
}

// TestParseTranslateResponse 测试响应解析的边界情况
func TestParseTranslateResponse(t *testing.T) {
	// 多段拼接
	result, err := parseTranslateResponse([]byte(googleResponse))
	if err != nil || result != "Hola mundo." {
		t.Errorf("多段拼接不正确: %q, %v", result, err)
	}

	// 非法 JSON
	if _, err := parseTranslateResponse([]byte("not json")); err == nil {
		t.Error("非法 JSON 应返回错误")
	}

	// 空数组
	if _, err := parseTranslateResponse([]byte("[]")); err == nil {
		t.Error("空响应应返回错误")
	}

	// 结构不符
	if _, err := parseTranslateResponse([]byte(`["just a string"]`)); err == nil {
		t.Error("格式不符应返回错误")
	}

	t.Log("✓ 响应解析正确")
}
