/**
 * 应用层:监控应用
 * @author: sun977
 * @date: 2025.11.16
 * @description: 监控应用实例，HTTP服务与采集调度器的生命周期管理
 * @func: Start 启动调度器与HTTP服务，Stop 按序优雅停机
 */
package watch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"neowatch/internal/config"
	"neowatch/internal/pkg/logger"
)

// App 监控应用实例
type App struct {
	cfg    *config.Config
	router *Router
	server *http.Server
}

// NewApp 创建监控应用实例
func NewApp(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *App {
	router := NewRouter(db, redisClient, cfg)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:    cfg,
		router: router,
		server: server,
	}
}

// Start 启动应用:先启动采集调度器，再拉起HTTP服务
// HTTP服务阻塞运行直到 Stop 被调用
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Monitor.Enabled {
		if err := a.router.GetScheduler().Start(ctx); err != nil {
			return fmt.Errorf("start monitor scheduler failed: %w", err)
		}
	} else {
		logger.LogSystemEvent("app", "monitor_disabled", "monitor scheduler disabled by config", logrus.WarnLevel, nil)
	}

	logger.LogSystemEvent("app", "http_listen", "HTTP server listening", logrus.InfoLevel, map[string]interface{}{
		"address": a.server.Addr,
	})

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop 优雅停机:先停HTTP入口，再停调度器，保证在途周期有界退出
func (a *App) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("http server shutdown failed: %w", err)
	}

	if a.cfg.Monitor.Enabled {
		if err := a.router.GetScheduler().Stop(); err != nil {
			logger.LogSystemEvent("app", "scheduler_stop_skipped", err.Error(), logrus.WarnLevel, nil)
		}
	}

	logger.LogSystemEvent("app", "app_stopped", "application stopped", logrus.InfoLevel, nil)
	return firstErr
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *Router {
	return a.router
}
