/*
 * @author: sun977
 * @date: 2025.11.16
 * @description: 监控主程序入口
 * @func: 加载配置、初始化日志与连接、启动采集调度与HTTP服务、等待中断信号
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neowatch/internal/app/watch"
	"neowatch/internal/config"
	"neowatch/internal/pkg/database"
	"neowatch/internal/pkg/logger"
)

func main() {
	var configPath string
	var env string
	flag.StringVar(&configPath, "config", "configs", "配置文件目录")
	flag.StringVar(&env, "env", "", "运行环境(development/production/test)")
	flag.Parse()

	// 加载配置
	cfg := config.MustLoadConfig(configPath, env)

	// 初始化日志
	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 建立数据库与Redis连接
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		log.Fatalf("Failed to connect mysql: %v", err)
	}
	redisClient, err := database.NewRedisConnection(&cfg.Database.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = redisClient.Close()
	}()

	// 监听配置文件变更(阈值等变更需要重启生效，仅记录提示)
	if err := config.StartConfigWatcher(configPath, env); err != nil {
		log.Printf("Config watcher unavailable: %v", err)
	} else {
		_ = config.AddConfigReloadCallback(config.MonitorConfigReloadCallback)
		defer func() { _ = config.StopConfigWatcher() }()
	}

	// 创建应用实例
	app := watch.NewApp(cfg, db, redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动应用的goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start(ctx)
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Application failed: %v", err)
		}
	case <-quit:
		log.Println("Shutting down...")
	}

	// 给在途请求与采集周期留出停机时间
	if err := app.Stop(cfg.Monitor.StopTimeout + 5*time.Second); err != nil {
		log.Printf("Shutdown with error: %v", err)
	}
	log.Println("Server exiting")
}
