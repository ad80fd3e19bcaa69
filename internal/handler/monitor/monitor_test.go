/**
 * 监控处理器层测试
 * @author: sun977
 * @date: 2025.11.16
 * @description: 验证指标查询的参数校验与健康探针的状态码映射
 */
package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"neowatch/internal/config"
	"neowatch/internal/model"
	monitorService "neowatch/internal/service/monitor"
)

func newTestHandler() *MonitorHandler {
	gin.SetMode(gin.TestMode)
	cfg := &config.MonitorConfig{StopTimeout: time.Second}
	scheduler := monitorService.NewScheduler(cfg,
		monitorService.NewEvaluator(nil),
		monitorService.NewAlertManager(10),
		monitorService.NewTrendAnalyzer(10, 3, 0.001))
	return NewMonitorHandler(scheduler)
}

func performGet(h func(*gin.Context), target string) (*httptest.ResponseRecorder, model.APIResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)

	h(c)

	var resp model.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

// 不带domain参数遍历全部领域,未采集时返回空集合而非错误
func TestGetMetricsAllDomainsEmpty(t *testing.T) {
	h := newTestHandler()

	w, resp := performGet(h.GetMetrics, "/api/v1/monitor/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp.Status)
}

func TestGetMetricsRejectsUnknownDomain(t *testing.T) {
	h := newTestHandler()

	w, resp := performGet(h.GetMetrics, "/api/v1/monitor/metrics?domain=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "failed", resp.Status)
	assert.Contains(t, resp.Error, "bogus")
}

// 调度器未运行时健康探针返回503,响应体状态与HTTP状态码一致
func TestGetHealthStoppedScheduler(t *testing.T) {
	h := newTestHandler()

	w, resp := performGet(h.GetHealth, "/api/v1/monitor/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "failed", resp.Status)
}
