package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Moritapr/traductor-pdf-es/middleware"
	"github.com/Moritapr/traductor-pdf-es/models"
	"github.com/Moritapr/traductor-pdf-es/translator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TranslatedSuffix 输出文件名后缀：源文件的 .pdf 替换为该后缀
const TranslatedSuffix = "_TRADUCIDO_ES.pdf"

// dataDir 每个会话的数据根目录
const dataDir = "data"

// TaskManager 管理所有用户的任务及其取消函数
type TaskManager struct {
	// sessionID -> taskID -> task
	userTasks map[string]map[string]*models.TranslateTask
	cancels   map[string]context.CancelFunc
	mu        sync.RWMutex
}

var taskManager *TaskManager

func init() {
	taskManager = &TaskManager{
		userTasks: make(map[string]map[string]*models.TranslateTask),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// AddTask 为用户添加任务
func (tm *TaskManager) AddTask(sessionID string, task *models.TranslateTask, cancel context.CancelFunc) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.userTasks[sessionID] == nil {
		tm.userTasks[sessionID] = make(map[string]*models.TranslateTask)
	}
	tm.userTasks[sessionID][task.ID] = task
	tm.cancels[task.ID] = cancel
}

// GetTask 获取用户的特定任务
func (tm *TaskManager) GetTask(sessionID, taskID string) (*models.TranslateTask, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if userTasks, exists := tm.userTasks[sessionID]; exists {
		task, found := userTasks[taskID]
		return task, found
	}
	return nil, false
}

// GetUserTasks 获取用户的所有任务
func (tm *TaskManager) GetUserTasks(sessionID string) []*models.TranslateTask {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	userTasks, exists := tm.userTasks[sessionID]
	if !exists {
		return []*models.TranslateTask{}
	}

	tasks := make([]*models.TranslateTask, 0, len(userTasks))
	for _, task := range userTasks {
		tasks = append(tasks, task)
	}
	return tasks
}

// UpdateTask 更新任务（用于更新进度等）
func (tm *TaskManager) UpdateTask(sessionID, taskID string, updateFn func(*models.TranslateTask)) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if userTasks, exists := tm.userTasks[sessionID]; exists {
		if task, found := userTasks[taskID]; found {
			updateFn(task)
		}
	}
}

// release 任务结束后释放取消函数：调用它让关联的 context
// 及时回收，并从表中删除对应条目
func (tm *TaskManager) release(taskID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if cancel, ok := tm.cancels[taskID]; ok {
		cancel()
		delete(tm.cancels, taskID)
	}
}

// Cancel 取消任务，返回任务是否存在
func (tm *TaskManager) Cancel(sessionID, taskID string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if userTasks, exists := tm.userTasks[sessionID]; exists {
		if _, found := userTasks[taskID]; found {
			if cancel, ok := tm.cancels[taskID]; ok {
				cancel()
				delete(tm.cancels, taskID)
			}
			return true
		}
	}
	return false
}

// TranslateHandler 处理翻译请求：接收上传的 PDF，
// 在任何提取开始之前校验页数，然后启动后台翻译任务
func TranslateHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "只支持 .pdf 文件"})
		return
	}

	taskID := uuid.New().String()
	uploadDir := filepath.Join(dataDir, "users", sessionID, "uploads")
	os.MkdirAll(uploadDir, 0755)

	sourcePath := filepath.Join(uploadDir, taskID+".pdf")
	if err := c.SaveUploadedFile(file, sourcePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败: " + err.Error()})
		return
	}

	// 页数超限在任务开始之前就拒绝（不截断、不处理）
	pipeline := newPipeline(sessionID)
	pageCount, err := pipeline.CheckPageLimit(sourcePath)
	if err != nil {
		os.Remove(sourcePath)
		var exceeded *translator.PageCountExceededError
		if errors.As(err, &exceeded) {
			c.JSON(http.StatusBadRequest, gin.H{"error": exceeded.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取 PDF 文件: " + err.Error()})
		return
	}

	task := &models.TranslateTask{
		ID:         taskID,
		SessionID:  sessionID,
		SourceFile: file.Filename,
		PageCount:  pageCount,
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	taskManager.AddTask(sessionID, task, cancel)

	go processTranslation(ctx, pipeline, sessionID, taskID, sourcePath)

	c.JSON(http.StatusOK, gin.H{
		"taskId":    taskID,
		"pageCount": pageCount,
		"message":   "翻译任务已创建",
	})
}

// newPipeline 为指定会话创建带独立缓存目录的流水线
func newPipeline(sessionID string) *translator.Pipeline {
	client := translator.NewGoogleClient()

	cacheDir := filepath.Join(dataDir, "users", sessionID, "cache")
	if cache, err := translator.NewCache(cacheDir); err == nil {
		client.WithCache(cache)
	} else {
		log.Printf("警告：创建缓存目录失败，本次运行不使用缓存: %v", err)
	}

	return translator.NewPipeline(client)
}

// processTranslation 在后台执行翻译流水线
func processTranslation(ctx context.Context, pipeline *translator.Pipeline, sessionID, taskID, sourcePath string) {
	defer taskManager.release(taskID)

	taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
		t.Status = models.StatusProcessing
	})

	log.Printf("[会话 %s][任务 %s] 开始翻译", sessionID[:8], taskID)

	defer func() {
		if r := recover(); r != nil {
			taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
				t.Status = models.StatusFailed
				t.Error = fmt.Sprintf("翻译过程出错: %v", r)
			})
			log.Printf("[会话 %s][任务 %s] 翻译失败（panic）: %v", sessionID[:8], taskID, r)
		}
	}()

	outputDir := filepath.Join(dataDir, "users", sessionID, "outputs")
	os.MkdirAll(outputDir, 0755)
	outputPath := filepath.Join(outputDir, taskID+".pdf")

	onProgress := func(event translator.ProgressEvent) {
		taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
			t.Stage = event.Stage
			t.Progress = event.Percent
			t.Message = event.Message
		})
	}

	report, err := pipeline.Translate(ctx, sourcePath, outputPath, onProgress)
	if err != nil {
		status := models.StatusFailed
		if errors.Is(err, context.Canceled) {
			status = models.StatusCancelled
			// 取消时丢弃部分输出
			os.Remove(outputPath)
		}
		taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
			t.Status = status
			t.Error = err.Error()
		})
		log.Printf("[会话 %s][任务 %s] 翻译结束: %v", sessionID[:8], taskID, err)
		return
	}

	taskManager.UpdateTask(sessionID, taskID, func(t *models.TranslateTask) {
		t.Status = models.StatusCompleted
		t.Progress = 100
		t.Warnings = report.Warnings
		t.CompletedAt = time.Now()
		t.OutputPath = outputPath
	})

	log.Printf("[会话 %s][任务 %s] 翻译完成: %s（%d 条警告）",
		sessionID[:8], taskID, outputPath, len(report.Warnings))
}

// GetStatusHandler 获取任务状态
func GetStatusHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	task, exists := taskManager.GetTask(sessionID, c.Param("taskId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或无权访问"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// CancelHandler 取消正在执行的任务
func CancelHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	if !taskManager.Cancel(sessionID, c.Param("taskId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或无权访问"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "任务已取消"})
}

// DownloadHandler 下载翻译后的 PDF。
// 文件名把源文件的 .pdf 后缀替换为 _TRADUCIDO_ES.pdf
func DownloadHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	task, exists := taskManager.GetTask(sessionID, c.Param("taskId"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或无权访问"})
		return
	}

	if task.Status != models.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "任务未完成"})
		return
	}

	filename := OutputFilename(task.SourceFile)
	c.FileAttachment(task.OutputPath, filename)
}

// GetTasksHandler 获取当前用户的所有任务
func GetTasksHandler(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的会话"})
		return
	}

	taskList := taskManager.GetUserTasks(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"tasks": taskList,
		"total": len(taskList),
	})
}

// OutputFilename 根据源文件名生成下载文件名
func OutputFilename(sourceFile string) string {
	base := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	return base + TranslatedSuffix
}
