/**
 * 监控服务层:指标采集器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 采集器公共骨架，按操作隔离失败，单个指标失败不影响同领域其余指标
 * @func: Collector接口与collectOps公共采集流程
 * @note: 采集器永不返回错误，数据源不可用表现为快照中的降级标记
 */
package monitor

import (
	"context"
	"time"

	"neowatch/internal/config"
	monitorModel "neowatch/internal/model/monitor"
	"neowatch/internal/pkg/logger"
)

// Collector 领域指标采集器
type Collector interface {
	Domain() monitorModel.Domain
	Collect(ctx context.Context) *monitorModel.DomainSnapshot
}

// metricOp 单个指标采集操作
// neutralZero为真时(计数类指标)失败降级为0值并打降级标记，
// 为假时(比率类指标)失败直接省略该指标
type metricOp struct {
	name        string
	unit        string
	neutralZero bool
	fn          func(ctx context.Context) (float64, error)
}

// collectOps 逐个执行采集操作，失败的操作记入降级列表后继续
func collectOps(ctx context.Context, domain monitorModel.Domain, ops []metricOp) *monitorModel.DomainSnapshot {
	snapshot := &monitorModel.DomainSnapshot{
		Domain:   domain,
		Metrics:  make([]monitorModel.Metric, 0, len(ops)),
		Degraded: make([]string, 0),
	}

	for _, op := range ops {
		value, err := op.fn(ctx)
		now := time.Now()
		if err != nil {
			logDegraded(domain, op.name, err)
			snapshot.Degraded = append(snapshot.Degraded, op.name)
			if op.neutralZero {
				// 计数类指标降级为0值，保持指标集合完整
				snapshot.Metrics = append(snapshot.Metrics, monitorModel.Metric{
					Name:      op.name,
					Domain:    domain,
					Value:     0,
					Unit:      op.unit,
					Timestamp: now,
					Stale:     true,
				})
			}
			continue
		}

		snapshot.Metrics = append(snapshot.Metrics, monitorModel.Metric{
			Name:      op.name,
			Domain:    domain,
			Value:     value,
			Unit:      op.unit,
			Timestamp: now,
		})
	}

	snapshot.CollectedAt = time.Now()
	return snapshot
}

// logDegraded 记录指标降级
// 数据源不可用是周期内可恢复情况: 生产环境只留调试日志，开发环境记录细节
func logDegraded(domain monitorModel.Domain, operation string, err error) {
	if config.IsProduction() {
		logger.Debugf("metric degraded: %s/%s", domain, operation)
		return
	}
	logger.LogWarn("metric collection degraded", "", 0, "",
		"service.monitor.collector", "", map[string]interface{}{
			"operation": "collect_metric",
			"func_name": "service.monitor.collector",
			"domain":    string(domain),
			"metric":    operation,
			"error":     err.Error(),
		})
}
