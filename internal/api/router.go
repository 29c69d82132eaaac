package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Arcshia42/immigration-news/internal/collector"
	"github.com/Arcshia42/immigration-news/internal/scheduler"
	"github.com/Arcshia42/immigration-news/internal/storage"
)

// SnapshotReader 读取已写入的快照
type SnapshotReader interface {
	Load(name string) ([]collector.NewsItem, error)
	List() ([]string, error)
}

// Runner 手动触发一轮采集
type Runner interface {
	RunOnce(ctx context.Context) (*scheduler.Report, error)
}

type Server struct {
	store  SnapshotReader
	runner Runner
}

// NewServer runner 可为空，此时不提供手动采集接口
func NewServer(store SnapshotReader, runner Runner) *Server {
	return &Server{store: store, runner: runner}
}

// NewRouter 组装 gin 引擎；user/pass 非空时启用 Basic Auth
func NewRouter(s *Server, user, pass string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	if user != "" && pass != "" {
		r.Use(basicAuthMiddleware(user, pass))
	}
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/news", s.listNews)
		v1.GET("/snapshots", s.listSnapshots)
		v1.POST("/collect", s.collect)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listNews date 为空时返回 latest
func (s *Server) listNews(c *gin.Context) {
	name := storage.LatestName
	if date := c.Query("date"); date != "" {
		if _, err := time.Parse(collector.DateLayout, date); err != nil {
			fail(c, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return
		}
		name = storage.SnapshotName(date)
	}

	items, err := s.store.Load(name)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			fail(c, http.StatusNotFound, "not_found", "snapshot not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

func (s *Server) listSnapshots(c *gin.Context) {
	names, err := s.store.List()
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    names,
	})
}

func (s *Server) collect(c *gin.Context) {
	if s.runner == nil {
		fail(c, http.StatusServiceUnavailable, "unavailable", "collector not configured")
		return
	}
	// 客户端断开不应中断已开始的采集
	report, err := s.runner.RunOnce(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		var pe *storage.PersistError
		switch {
		case errors.Is(err, scheduler.ErrRunInProgress):
			fail(c, http.StatusConflict, "busy", err.Error())
		case errors.As(err, &pe):
			fail(c, http.StatusInternalServerError, "persist_failed", err.Error())
		default:
			fail(c, http.StatusInternalServerError, "internal_error", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"runId":      report.RunID,
			"date":       report.Date,
			"total":      report.Total(),
			"duplicates": report.Duplicates,
			"translated": report.Translated,
			"sources":    report.Sources,
			"snapshots":  report.Snapshots,
		},
	})
}

func fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": msg,
	})
}

// basicAuthMiddleware /health 不做认证，便于健康检查
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
