package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName 会话 Cookie 名称
	SessionCookieName = "session_id"
	// SessionTimeout 会话过期时间
	SessionTimeout = 24 * time.Hour
)

// Session 用户会话：每个会话的上传、输出和缓存完全隔离
type Session struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
}

// SessionManager 会话管理器
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.Mutex
}

var manager *SessionManager

func init() {
	manager = &SessionManager{
		sessions: make(map[string]*Session),
	}
	go manager.cleanupLoop()
}

// newSessionID 生成随机会话 ID
func newSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// 随机源不可用时退化为基于时间和进程信息的哈希
		h := sha256.New()
		h.Write([]byte(time.Now().String()))
		h.Write([]byte(os.Getenv("HOSTNAME")))
		h.Write([]byte(fmt.Sprintf("%d", os.Getpid())))
		return hex.EncodeToString(h.Sum(nil))
	}
	return hex.EncodeToString(b)
}

// GetOrCreate 获取现有会话，不存在或已过期时创建新会话
func (sm *SessionManager) GetOrCreate(sessionID string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sessionID != "" {
		if session, exists := sm.sessions[sessionID]; exists {
			if time.Since(session.LastSeen) < SessionTimeout {
				session.LastSeen = time.Now()
				return session
			}
			delete(sm.sessions, sessionID)
		}
	}

	session := &Session{
		ID:        newSessionID(),
		CreatedAt: time.Now(),
		LastSeen:  time.Now(),
	}
	sm.sessions[session.ID] = session
	return session
}

// cleanupLoop 定期清理过期会话
func (sm *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		sm.mu.Lock()
		for id, session := range sm.sessions {
			if time.Since(session.LastSeen) >= SessionTimeout {
				delete(sm.sessions, id)
			}
		}
		sm.mu.Unlock()
	}
}

// SessionMiddleware Gin 中间件：确保每个请求都绑定一个会话
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(SessionCookieName)
		session := manager.GetOrCreate(sessionID)

		if sessionID != session.ID {
			isSecure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
			c.SetCookie(SessionCookieName, session.ID,
				int(SessionTimeout.Seconds()), "/", "", isSecure, true)
		}

		c.Set("sessionID", session.ID)
		c.Next()
	}
}

// GetSessionID 从上下文获取会话 ID
func GetSessionID(c *gin.Context) string {
	if id, ok := c.Get("sessionID"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
