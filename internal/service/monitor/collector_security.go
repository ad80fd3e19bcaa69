/**
 * 监控服务层:安全事件采集器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 采集1小时窗口内的安全事件、登录失败与高危事件计数
 * @func: SecurityCollector
 */
package monitor

import (
	"context"
	"time"

	monitorModel "neowatch/internal/model/monitor"
)

// SecurityReader 安全事件读取接口
type SecurityReader interface {
	CountEventsSince(ctx context.Context, since time.Time) (int64, error)
	CountFailedLoginsSince(ctx context.Context, since time.Time) (int64, error)
	CountHighSeverityEventsSince(ctx context.Context, since time.Time) (int64, error)
}

// SecurityCollector 安全事件采集器
type SecurityCollector struct {
	repo SecurityReader
}

// NewSecurityCollector 创建安全事件采集器
func NewSecurityCollector(repo SecurityReader) *SecurityCollector {
	return &SecurityCollector{repo: repo}
}

// Domain 返回所属领域
func (c *SecurityCollector) Domain() monitorModel.Domain {
	return monitorModel.DomainSecurity
}

// Collect 采集本周期的安全指标
func (c *SecurityCollector) Collect(ctx context.Context) *monitorModel.DomainSnapshot {
	since := time.Now().Add(-time.Hour)

	ops := []metricOp{
		{
			name:        monitorModel.MetricSecurityEvents,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountEventsSince(ctx, since)
				return float64(n), err
			},
		},
		{
			name:        monitorModel.MetricFailedLogins,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountFailedLoginsSince(ctx, since)
				return float64(n), err
			},
		},
		{
			name:        monitorModel.MetricHighSeverityEvents,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountHighSeverityEventsSince(ctx, since)
				return float64(n), err
			},
		},
	}

	return collectOps(ctx, c.Domain(), ops)
}
