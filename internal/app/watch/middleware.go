/**
 * 应用层:中间件管理器
 * @author: sun977
 * @date: 2025.11.16
 * @description: Gin中间件集合，CORS、安全头、访问日志、性能计数与JWT认证
 * @func: 访问日志中间件同时向性能计数器写入请求延迟/错误与会话活跃记录，
 *        作为性能领域采集的数据来源
 */
package watch

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"neowatch/internal/config"
	"neowatch/internal/model"
	"neowatch/internal/pkg/auth"
	"neowatch/internal/pkg/logger"
	redisRepo "neowatch/internal/repo/redis"
)

// MiddlewareManager 中间件管理器
type MiddlewareManager struct {
	jwtManager *auth.JWTManager
	perfStats  *redisRepo.PerfStatsRepository
	logCfg     *config.LoggingConfig
}

// NewMiddlewareManager 创建中间件管理器实例
func NewMiddlewareManager(jwtManager *auth.JWTManager, perfStats *redisRepo.PerfStatsRepository, logCfg *config.LoggingConfig) *MiddlewareManager {
	return &MiddlewareManager{
		jwtManager: jwtManager,
		perfStats:  perfStats,
		logCfg:     logCfg,
	}
}

// GinCORSMiddleware Gin跨域中间件
func (m *MiddlewareManager) GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		// 处理预检请求
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// GinSecurityHeadersMiddleware Gin安全头中间件
func (m *MiddlewareManager) GinSecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// GinRecoveryMiddleware Gin异常恢复中间件
func (m *MiddlewareManager) GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.LogError(
					fmt.Errorf("panic recovered: %v", r),
					c.GetHeader("X-Request-ID"),
					0,
					c.ClientIP(),
					c.Request.URL.String(),
					c.Request.Method,
					map[string]interface{}{
						"operation": "panic_recovery",
						"func_name": "app.watch.GinRecoveryMiddleware",
					},
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.APIResponse{
					Code:    http.StatusInternalServerError,
					Status:  "failed",
					Message: "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// GinLoggingMiddleware Gin日志中间件
// 记录访问日志的同时把请求延迟/错误写入性能计数器，驱动性能领域采集
func (m *MiddlewareManager) GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 排除的路径(健康探针等高频请求)既不记日志也不进性能计数
		if m.isSkippedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		// 获取用户信息（如果已认证）
		userID := uint(0)
		username := ""
		if uid, exists := c.Get("user_id"); exists {
			if uidUint, ok := uid.(uint); ok {
				userID = uidUint
			}
		}
		if uname, exists := c.Get("username"); exists {
			if unameStr, ok := uname.(string); ok {
				username = unameStr
			}
		}

		// 写入性能计数器，失败不影响请求
		// 性能领域采集依赖这些计数，不受请求日志开关控制
		if m.perfStats != nil {
			if err := m.perfStats.RecordRequest(c.Request.Context(), float64(duration.Milliseconds()), statusCode >= 500); err != nil {
				logger.Debugf("record request stats failed: %v", err)
			}
			if err := m.perfStats.TouchSession(c.Request.Context(), m.sessionID(c, userID)); err != nil {
				logger.Debugf("touch session failed: %v", err)
			}
		}

		if m.logCfg != nil && !m.logCfg.EnableRequestLog {
			return
		}

		// 慢请求按配置阈值告警
		if m.logCfg != nil && m.logCfg.SlowRequestThreshold > 0 && duration > m.logCfg.SlowRequestThreshold {
			logger.LogWarn("slow request detected", c.GetHeader("X-Request-ID"), userID, c.ClientIP(),
				c.Request.URL.String(), c.Request.Method, map[string]interface{}{
					"operation": "http_request",
					"duration":  duration.Milliseconds(),
					"threshold": m.logCfg.SlowRequestThreshold.Milliseconds(),
				})
		}

		logger.LogBusinessOperation("http_request", userID, username, c.ClientIP(), c.GetHeader("X-Request-ID"), "info", "API请求", map[string]interface{}{
			"operation":     "http_request",
			"method":        c.Request.Method,
			"url":           c.Request.URL.String(),
			"status_code":   statusCode,
			"duration":      duration.Milliseconds(),
			"user_agent":    c.Request.UserAgent(),
			"request_size":  c.Request.ContentLength,
			"response_size": int64(c.Writer.Size()),
		})

		// 错误状态码补一条错误日志
		if statusCode >= 400 {
			errorMsg := ""
			if errs := c.Errors; len(errs) > 0 {
				errorMsg = errs.String()
			}
			logger.LogError(fmt.Errorf("HTTP %d: %s", statusCode, errorMsg), c.GetHeader("X-Request-ID"), userID, c.ClientIP(),
				c.Request.URL.String(), c.Request.Method, map[string]interface{}{
					"operation":   "http_request",
					"status_code": statusCode,
				})
		}
	}
}

// GinJWTAuthMiddleware Gin JWT认证中间件
// 保护告警确认/解决等写操作
func (m *MiddlewareManager) GinJWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := m.extractTokenFromGinHeader(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "missing or invalid authorization header",
				"error":   err.Error(),
			})
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(accessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "invalid or expired token",
				"error":   err.Error(),
			})
			c.Abort()
			return
		}

		// 将用户信息添加到Gin上下文
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("roles", claims.Roles)

		c.Next()
	}
}

// sessionID 活跃会话标识: 已认证用户按用户ID，匿名请求按客户端IP
func (m *MiddlewareManager) sessionID(c *gin.Context, userID uint) string {
	if userID > 0 {
		return fmt.Sprintf("user:%d", userID)
	}
	return "ip:" + c.ClientIP()
}

// isSkippedPath 判断路径是否在排除列表中
func (m *MiddlewareManager) isSkippedPath(path string) bool {
	if m.logCfg == nil {
		return false
	}
	for _, skip := range m.logCfg.SkipPaths {
		if skip != "" && strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

// extractTokenFromGinHeader 从Gin请求头中提取访问令牌
func (m *MiddlewareManager) extractTokenFromGinHeader(c *gin.Context) (string, error) {
	authorization := c.GetHeader("Authorization")
	if authorization == "" {
		return "", &model.ValidationError{Field: "authorization", Message: "authorization header is required"}
	}

	// 检查Bearer前缀
	if !strings.HasPrefix(authorization, "Bearer ") {
		return "", &model.ValidationError{Field: "authorization", Message: "authorization header must start with 'Bearer '"}
	}

	token := strings.TrimPrefix(authorization, "Bearer ")
	if token == "" {
		return "", &model.ValidationError{Field: "authorization", Message: "access token cannot be empty"}
	}

	return token, nil
}
