package initialization

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketPlatform/api"
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/core/logc"
)

// NewRouter 注册全部路由, 测试中直接使用返回的 Engine
func NewRouter(mode string) *gin.Engine {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(
		gin.Recovery(),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": global.Version})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	w8t := r.Group("/api/w8t/ticket")
	{
		api.ProblemController.API(w8t)
		api.EventController.API(w8t)
		api.ItemController.API(w8t)
		api.SettingsController.API(w8t)
		api.ServerController.API(w8t)
		api.OperationLogController.API(w8t)
	}

	return r
}

// InitRoute 启动 HTTP 服务, 收到退出信号后停止后台任务并优雅关闭
func InitRoute(c *ctx.Context) error {
	srv := &http.Server{
		Addr:              ":" + global.Config.Server.Port,
		Handler:           NewRouter(global.Config.Server.Mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logc.Infof(c.Ctx, "服务启动, 监听端口: %s", global.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		c.StopJobs()
		return err
	case <-quit:
	}

	logc.Info(c.Ctx, "收到退出信号, 正在关闭服务")
	c.StopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
