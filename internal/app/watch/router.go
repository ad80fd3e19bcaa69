/**
 * 应用层:路由管理器
 * @author: sun977
 * @date: 2025.11.16
 * @description: 依赖装配与路由注册，网关仓库->采集器->调度器->处理器逐层装填
 * @func: NewRouter 完成全部依赖装配，SetupRoutes 注册路由
 */
package watch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"neowatch/internal/config"
	monitorHandler "neowatch/internal/handler/monitor"
	authPkg "neowatch/internal/pkg/auth"
	"neowatch/internal/pkg/logger"
	platformRepo "neowatch/internal/repo/mysql/platform"
	redisRepo "neowatch/internal/repo/redis"
	monitorService "neowatch/internal/service/monitor"
)

// Router 路由管理器
type Router struct {
	engine            *gin.Engine
	middlewareManager *MiddlewareManager
	monitorHandler    *monitorHandler.MonitorHandler
	scheduler         *monitorService.Scheduler
}

// NewRouter 创建路由管理器实例
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Router {
	// 初始化工具包
	jwtManager := authPkg.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer, cfg.Security.JWT.Expire)

	// 网关仓库层(每个仓库每次调用独立申请带超时的会话)
	queryTimeout := cfg.Monitor.Gateway.QueryTimeout
	activityRepo := platformRepo.NewActivityRepository(db, queryTimeout)
	securityRepo := platformRepo.NewSecurityRepository(db, queryTimeout)
	maintenanceRepo := platformRepo.NewMaintenanceRepository(db, queryTimeout)
	financeRepo := platformRepo.NewFinanceRepository(db, queryTimeout)
	perfStatsRepo := redisRepo.NewPerfStatsRepository(redisClient, cfg.Monitor.Gateway.LatencySampleSize, queryTimeout)

	// 采集器按领域装填
	collectors := []monitorService.Collector{
		monitorService.NewPerformanceCollector(perfStatsRepo),
		monitorService.NewActivityCollector(activityRepo),
		monitorService.NewSecurityCollector(securityRepo),
		monitorService.NewMaintenanceCollector(maintenanceRepo),
		monitorService.NewFinancialCollector(financeRepo, cfg.Monitor.MonthlyBudget),
	}

	// 监控服务装配
	evaluator := monitorService.NewEvaluatorFromConfig(cfg.Monitor.Thresholds)
	alertManager := monitorService.NewAlertManager(cfg.Monitor.Alert.EventHistorySize)
	trendAnalyzer := monitorService.NewTrendAnalyzer(
		cfg.Monitor.Trend.WindowSize,
		cfg.Monitor.Trend.MinSamples,
		cfg.Monitor.Trend.SlopeEpsilon,
	)
	scheduler := monitorService.NewScheduler(&cfg.Monitor, evaluator, alertManager, trendAnalyzer, collectors...)

	// 初始化中间件管理器与处理器
	middlewareManager := NewMiddlewareManager(jwtManager, perfStatsRepo, &cfg.Security.Logging)
	handler := monitorHandler.NewMonitorHandler(scheduler)

	// 创建Gin引擎
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	return &Router{
		engine:            engine,
		middlewareManager: middlewareManager,
		monitorHandler:    handler,
		scheduler:         scheduler,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 设置全局中间件
	r.engine.Use(r.middlewareManager.GinRecoveryMiddleware())
	r.engine.Use(r.middlewareManager.GinCORSMiddleware())
	r.engine.Use(r.middlewareManager.GinSecurityHeadersMiddleware())
	r.engine.Use(r.middlewareManager.GinLoggingMiddleware())

	// API版本路由组
	// /api/v1
	api := r.engine.Group("/api")
	v1 := api.Group("/v1")

	// 监控查询路由（只读，不需要认证）
	r.setupMonitorReadRoutes(v1)

	// 告警操作路由（需要JWT认证）
	r.setupAlertWriteRoutes(v1)

	// 健康检查路由
	r.setupHealthRoutes(api)
}

// setupMonitorReadRoutes 设置监控只读路由
func (r *Router) setupMonitorReadRoutes(v1 *gin.RouterGroup) {
	monitor := v1.Group("/monitor")
	{
		monitor.GET("/metrics", r.monitorHandler.GetMetrics)             // 最近采集的指标快照
		monitor.GET("/alerts", r.monitorHandler.ListAlerts)              // 告警列表(可按状态过滤)
		monitor.GET("/alerts/history", r.monitorHandler.GetAlertHistory) // 最近告警事件
		monitor.GET("/alerts/:id", r.monitorHandler.GetAlert)            // 单条告警详情
		monitor.GET("/trends", r.monitorHandler.GetTrends)               // 趋势预测(可按领域过滤)
		monitor.GET("/health", r.monitorHandler.GetHealth)               // 调度器健康状态
	}
}

// setupAlertWriteRoutes 设置告警写操作路由
func (r *Router) setupAlertWriteRoutes(v1 *gin.RouterGroup) {
	alerts := v1.Group("/monitor/alerts")
	alerts.Use(r.middlewareManager.GinJWTAuthMiddleware())
	{
		alerts.POST("/:id/acknowledge", r.monitorHandler.AcknowledgeAlert) // 确认告警
		alerts.POST("/:id/resolve", r.monitorHandler.ResolveAlert)         // 手动解决告警
	}
}

// setupHealthRoutes 设置健康检查路由
func (r *Router) setupHealthRoutes(api *gin.RouterGroup) {
	// 进程存活检查
	api.GET("/health", r.healthCheck)
	api.GET("/live", r.healthCheck)
}

// GetEngine 获取Gin引擎实例
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetScheduler 获取监控调度器实例
func (r *Router) GetScheduler() *monitorService.Scheduler {
	return r.scheduler
}

// 健康检查处理器
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": logger.NowFormatted(),
	})
}
