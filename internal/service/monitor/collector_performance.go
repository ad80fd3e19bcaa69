/**
 * 监控服务层:系统性能采集器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 从Redis运行时计数器采集响应时间分位数、错误率与并发会话数
 * @func: PerformanceCollector
 */
package monitor

import (
	"context"

	monitorModel "neowatch/internal/model/monitor"
)

// PerfStatsReader 性能计数器读取接口
type PerfStatsReader interface {
	LatencyPercentiles(ctx context.Context) (p50, p95 float64, err error)
	ErrorRate(ctx context.Context) (float64, error)
	CountActiveSessions(ctx context.Context) (int64, error)
}

// PerformanceCollector 系统性能采集器
type PerformanceCollector struct {
	stats PerfStatsReader
}

// NewPerformanceCollector 创建系统性能采集器
func NewPerformanceCollector(stats PerfStatsReader) *PerformanceCollector {
	return &PerformanceCollector{stats: stats}
}

// Domain 返回所属领域
func (c *PerformanceCollector) Domain() monitorModel.Domain {
	return monitorModel.DomainPerformance
}

// Collect 采集本周期的性能指标
func (c *PerformanceCollector) Collect(ctx context.Context) *monitorModel.DomainSnapshot {
	// p50/p95共享一次采样环读取
	var p50v, p95v float64
	var percentilesErr error
	percentilesLoaded := false
	loadPercentiles := func(ctx context.Context) error {
		if !percentilesLoaded {
			p50v, p95v, percentilesErr = c.stats.LatencyPercentiles(ctx)
			percentilesLoaded = true
		}
		return percentilesErr
	}

	ops := []metricOp{
		{
			name: monitorModel.MetricResponseTimeP50,
			unit: "ms",
			fn: func(ctx context.Context) (float64, error) {
				if err := loadPercentiles(ctx); err != nil {
					return 0, err
				}
				return p50v, nil
			},
		},
		{
			name: monitorModel.MetricResponseTimeP95,
			unit: "ms",
			fn: func(ctx context.Context) (float64, error) {
				if err := loadPercentiles(ctx); err != nil {
					return 0, err
				}
				return p95v, nil
			},
		},
		{
			name: monitorModel.MetricErrorRate,
			unit: "ratio",
			fn: func(ctx context.Context) (float64, error) {
				return c.stats.ErrorRate(ctx)
			},
		},
		{
			name:        monitorModel.MetricConcurrentSessions,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.stats.CountActiveSessions(ctx)
				return float64(n), err
			},
		},
	}

	return collectOps(ctx, c.Domain(), ops)
}
