/**
 * 监控服务层:用户活跃度采集器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 采集24小时窗口内的活跃住户数与新注册数，以及小时级登录频率
 * @func: ActivityCollector
 */
package monitor

import (
	"context"
	"time"

	monitorModel "neowatch/internal/model/monitor"
)

// ActivityReader 住户活跃度读取接口
type ActivityReader interface {
	CountActiveUsers(ctx context.Context, since time.Time) (int64, error)
	CountNewRegistrations(ctx context.Context, since time.Time) (int64, error)
	CountRecentLogins(ctx context.Context, since time.Time) (int64, error)
}

// ActivityCollector 用户活跃度采集器
type ActivityCollector struct {
	repo ActivityReader
}

// NewActivityCollector 创建用户活跃度采集器
func NewActivityCollector(repo ActivityReader) *ActivityCollector {
	return &ActivityCollector{repo: repo}
}

// Domain 返回所属领域
func (c *ActivityCollector) Domain() monitorModel.Domain {
	return monitorModel.DomainUserActivity
}

// Collect 采集本周期的活跃度指标
// 登录频率取最近1小时窗口，无阈值定义，仅供趋势分析
func (c *ActivityCollector) Collect(ctx context.Context) *monitorModel.DomainSnapshot {
	now := time.Now()
	since := now.Add(-24 * time.Hour)
	loginWindow := now.Add(-time.Hour)

	ops := []metricOp{
		{
			name:        monitorModel.MetricActiveUsers,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountActiveUsers(ctx, since)
				return float64(n), err
			},
		},
		{
			name:        monitorModel.MetricNewRegistrations,
			unit:        "count",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountNewRegistrations(ctx, since)
				return float64(n), err
			},
		},
		{
			name:        monitorModel.MetricLoginFrequency,
			unit:        "logins/hour",
			neutralZero: true,
			fn: func(ctx context.Context) (float64, error) {
				n, err := c.repo.CountRecentLogins(ctx, loginWindow)
				return float64(n), err
			},
		},
	}

	return collectOps(ctx, c.Domain(), ops)
}
