/**
 * 监控处理器层:监控与告警HTTP请求处理
 * @author: sun977
 * @date: 2025.11.16
 * @description: 监控控制器层，处理指标查询、告警生命周期操作、趋势与健康探针
 * @func: HTTP请求处理，统一的错误处理与响应格式
 */
package monitor

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"neowatch/internal/model"
	monitorModel "neowatch/internal/model/monitor"
	"neowatch/internal/pkg/logger"
	"neowatch/internal/pkg/utils"
	monitorService "neowatch/internal/service/monitor"
)

// MonitorHandler 监控处理器
type MonitorHandler struct {
	scheduler *monitorService.Scheduler
}

// NewMonitorHandler 创建监控处理器实例
func NewMonitorHandler(scheduler *monitorService.Scheduler) *MonitorHandler {
	return &MonitorHandler{
		scheduler: scheduler,
	}
}

// GetMetrics 查询最近采集的指标快照
// GET /api/v1/monitor/metrics?domain=performance
func (h *MonitorHandler) GetMetrics(c *gin.Context) {
	domainParam := c.Query("domain")

	if domainParam != "" {
		domain := monitorModel.Domain(domainParam)
		if !domain.IsValid() {
			c.JSON(http.StatusBadRequest, model.APIResponse{
				Code:    http.StatusBadRequest,
				Status:  "failed",
				Message: "Invalid domain",
				Error:   "unknown domain: " + domainParam,
			})
			return
		}

		snapshot := h.scheduler.CurrentMetrics(domain)
		if snapshot == nil {
			c.JSON(http.StatusNotFound, model.APIResponse{
				Code:    http.StatusNotFound,
				Status:  "failed",
				Message: "No metrics collected yet for domain",
				Error:   "domain has no completed collection cycle",
			})
			return
		}

		c.JSON(http.StatusOK, model.APIResponse{
			Code:    http.StatusOK,
			Status:  "success",
			Message: "Metrics retrieved successfully",
			Data:    snapshot,
		})
		return
	}

	// 不带domain参数返回全部领域
	snapshots := make(map[monitorModel.Domain]*monitorModel.DomainSnapshot)
	for _, domain := range monitorModel.AllDomains {
		if snapshot := h.scheduler.CurrentMetrics(domain); snapshot != nil {
			snapshots[domain] = snapshot
		}
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Metrics retrieved successfully",
		Data:    snapshots,
	})
}

// ListAlerts 查询告警列表
// GET /api/v1/monitor/alerts?status=open
func (h *MonitorHandler) ListAlerts(c *gin.Context) {
	statusParam := c.Query("status")
	status := monitorModel.AlertStatus(statusParam)

	if statusParam != "" &&
		status != monitorModel.AlertStatusOpen &&
		status != monitorModel.AlertStatusAcknowledged &&
		status != monitorModel.AlertStatusResolved {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "Invalid alert status",
			Error:   "unknown status: " + statusParam,
		})
		return
	}

	alerts := h.scheduler.Alerts().List(status)
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Alerts retrieved successfully",
		Data: gin.H{
			"alerts": alerts,
			"total":  len(alerts),
		},
	})
}

// GetAlert 查询单条告警
// GET /api/v1/monitor/alerts/:id
func (h *MonitorHandler) GetAlert(c *gin.Context) {
	alertID := c.Param("id")

	alert, err := h.scheduler.Alerts().Get(alertID)
	if err != nil {
		h.respondAlertError(c, err, alertID, "get_alert")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Alert retrieved successfully",
		Data:    alert,
	})
}

// AcknowledgeAlert 确认告警
// POST /api/v1/monitor/alerts/:id/acknowledge
func (h *MonitorHandler) AcknowledgeAlert(c *gin.Context) {
	alertID := c.Param("id")

	alert, err := h.scheduler.Alerts().Acknowledge(alertID)
	if err != nil {
		h.respondAlertError(c, err, alertID, "acknowledge_alert")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Alert acknowledged successfully",
		Data:    alert,
	})
}

// ResolveAlert 手动解决告警
// POST /api/v1/monitor/alerts/:id/resolve
func (h *MonitorHandler) ResolveAlert(c *gin.Context) {
	alertID := c.Param("id")
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")

	var req model.ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		logger.LogError(
			err,
			XRequestID,
			0,
			clientIP,
			c.Request.URL.String(),
			"POST",
			map[string]interface{}{
				"operation": "resolve_alert",
				"option":    "ShouldBindJSON",
				"func_name": "handler.monitor.ResolveAlert",
				"alert_id":  alertID,
			},
		)
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "Invalid request format",
			Error:   err.Error(),
		})
		return
	}

	alert, err := h.scheduler.Alerts().Resolve(alertID, req.Note)
	if err != nil {
		h.respondAlertError(c, err, alertID, "resolve_alert")
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Alert resolved successfully",
		Data:    alert,
	})
}

// GetAlertHistory 查询最近的告警事件
// GET /api/v1/monitor/alerts/history?limit=50
func (h *MonitorHandler) GetAlertHistory(c *gin.Context) {
	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, model.APIResponse{
				Code:    http.StatusBadRequest,
				Status:  "failed",
				Message: "Invalid limit parameter",
				Error:   "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}

	events := h.scheduler.Alerts().History(limit)
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Alert history retrieved successfully",
		Data: gin.H{
			"events": events,
			"total":  len(events),
		},
	})
}

// GetTrends 查询趋势预测
// GET /api/v1/monitor/trends?domain=financial
func (h *MonitorHandler) GetTrends(c *gin.Context) {
	domainParam := c.Query("domain")
	domain := monitorModel.Domain(domainParam)

	if domainParam != "" && !domain.IsValid() {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: "Invalid domain",
			Error:   "unknown domain: " + domainParam,
		})
		return
	}

	predictions := h.scheduler.Trends().Predictions(domain)
	c.JSON(http.StatusOK, model.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Trend predictions retrieved successfully",
		Data: gin.H{
			"predictions": predictions,
			"total":       len(predictions),
		},
	})
}

// GetHealth 调度器健康探针
// GET /api/v1/monitor/health
func (h *MonitorHandler) GetHealth(c *gin.Context) {
	health := h.scheduler.Health()

	statusCode := http.StatusOK
	status := "success"
	message := "Scheduler health retrieved successfully"
	if !health.Running {
		statusCode = http.StatusServiceUnavailable
		status = "failed"
		message = "Scheduler is not running"
	}

	c.JSON(statusCode, model.APIResponse{
		Code:    statusCode,
		Status:  status,
		Message: message,
		Data:    health,
	})
}

// respondAlertError 告警操作的统一错误响应
func (h *MonitorHandler) respondAlertError(c *gin.Context, err error, alertID, operation string) {
	statusCode := h.getErrorStatusCode(err)
	logger.LogError(
		err,
		c.GetHeader("X-Request-ID"),
		0,
		utils.GetClientIP(c),
		c.Request.URL.String(),
		c.Request.Method,
		map[string]interface{}{
			"operation":   operation,
			"func_name":   "handler.monitor.respondAlertError",
			"alert_id":    alertID,
			"status_code": statusCode,
		},
	)
	c.JSON(statusCode, model.APIResponse{
		Code:    statusCode,
		Status:  "failed",
		Message: "Alert operation failed",
		Error:   err.Error(),
	})
}

// getErrorStatusCode 根据错误类型返回HTTP状态码
func (h *MonitorHandler) getErrorStatusCode(err error) int {
	switch {
	case errors.Is(err, monitorModel.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, monitorModel.ErrInvalidAlertState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
