/**
 * 监控服务层:维保工单采集器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 采集待处理工单、高优先级工单与平均响应时长
 * @func: MaintenanceCollector
 */
package monitor

import (
	"context"
	"time"

	monitorModel "neowatch/internal/model/monitor"
)

// 平均响应时长的统计回溯窗口
const maintenanceResponseWindow = 30 * 24 * time.Hour

// MaintenanceReader 维保工单读取接口
type MaintenanceReader interface {
	CountPending(ctx context.Context) (int64, error)
	CountHighPriorityPending(ctx context.Context) (int64, error)
	AverageResponseHours(ctx context.Context, since time.Time) (float64, error)
}

// MaintenanceCollector 维保工单采集器
type MaintenanceCollector struct {
	repo MaintenanceReader
}

// NewMaintenanceCollector 创建维保工单采集器
func NewMaintenanceCollector(repo MaintenanceReader) *MaintenanceCollector {
	return &MaintenanceCollector{repo: repo}
}

// Domain 返回所属领域
func (c *MaintenanceCollector) Domain() monitorModel.Domain {
	return monitorModel.DomainMaintenance
}

// Collect 采集本周期的维保指标
func (c *MaintenanceCollector) Collect(ctx context.Context) *monitorModel.DomainSnapshot {
	since := time.Now().Add(-maintenanceResponseWindow)

	ops := []metricOp{
		{
			name:        monitorModel.MetricPendingMaintenance,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountPending(ctx)
				return float64(n), err
			},
		},
		{
			name:        monitorModel.MetricHighPriorityMaintenance,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountHighPriorityPending(ctx)
				return float64(n), err
			},
		},
		{
			// 平均响应时长无合理的零值语义,采集失败时直接缺省
			name: monitorModel.MetricMaintenanceResponseTime,
			unit: "hours",
			fn: func(ctx context.Context) (float64, error) {
				return c.repo.AverageResponseHours(ctx, since)
			},
		},
	}

	return collectOps(ctx, c.Domain(), ops)
}
