package models

import "time"

// 任务状态
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// TranslateTask 一次 PDF 翻译任务
type TranslateTask struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"-"`
	SourceFile  string    `json:"sourceFile"`
	PageCount   int       `json:"pageCount,omitempty"`
	Status      string    `json:"status"` // pending, processing, completed, failed, cancelled
	Stage       string    `json:"stage,omitempty"`
	Progress    int       `json:"progress"` // 0–100
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
	OutputPath  string    `json:"-"`
}
