package main

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"github.com/Moritapr/traductor-pdf-es/handlers"
	"github.com/Moritapr/traductor-pdf-es/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed all:static
var staticFS embed.FS

func main() {
	r := gin.Default()

	// 设置最大上传文件大小 (100MB)
	r.MaxMultipartMemory = 100 << 20

	// 应用会话中间件到所有路由
	r.Use(middleware.SessionMiddleware())

	// API 路由
	api := r.Group("/api")
	{
		api.POST("/translate", handlers.TranslateHandler)
		api.GET("/status/:taskId", handlers.GetStatusHandler)
		api.GET("/download/:taskId", handlers.DownloadHandler)
		api.GET("/tasks", handlers.GetTasksHandler)
		api.POST("/cancel/:taskId", handlers.CancelHandler)
	}

	// 根据环境变量决定前端服务方式
	devMode := os.Getenv("DEV_MODE") == "true"

	if devMode {
		// 开发模式：代理到前端开发服务器
		log.Println("🔧 开发模式：代理前端请求到 http://localhost:3000")
		target, _ := url.Parse("http://localhost:3000")
		proxy := httputil.NewSingleHostReverseProxy(target)

		r.NoRoute(func(c *gin.Context) {
			proxy.ServeHTTP(c.Writer, c.Request)
		})
	} else {
		// 生产模式：使用内嵌的静态页面
		pageFS, err := fs.Sub(staticFS, "static")
		if err != nil {
			log.Printf("⚠️  错误：无法访问静态文件: %v\n", err)
			r.NoRoute(func(c *gin.Context) {
				c.String(http.StatusNotFound, "Static files error: "+err.Error())
			})
		} else {
			r.NoRoute(gin.WrapH(http.FileServer(http.FS(pageFS))))
		}
	}

	log.Println("🚀 PDF 英译西服务器启动在 http://localhost:8080")
	log.Println("✅ 会话隔离已启用 - 每个用户的任务和文件完全独立")
	r.Run(":8080")
}
