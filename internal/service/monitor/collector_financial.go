/**
 * 监控服务层:财务指标采集器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 采集逾期缴费比例、支出环比变化与月度预算使用率
 * @func: FinancialCollector
 */
package monitor

import (
	"context"
	"time"

	monitorModel "neowatch/internal/model/monitor"
)

// 逾期缴费的统计回溯窗口
const overduePaymentWindow = 90 * 24 * time.Hour

// FinanceReader 财务数据读取接口
type FinanceReader interface {
	OverduePaymentRatio(ctx context.Context, since time.Time) (float64, error)
	SpendTrendRatio(ctx context.Context) (float64, error)
	MonthToDateExpenses(ctx context.Context) (float64, error)
}

// FinancialCollector 财务指标采集器
type FinancialCollector struct {
	repo          FinanceReader
	monthlyBudget float64 // 月度预算，<=0 视为未配置,不产出预算使用率指标
}

// NewFinancialCollector 创建财务指标采集器
func NewFinancialCollector(repo FinanceReader, monthlyBudget float64) *FinancialCollector {
	return &FinancialCollector{repo: repo, monthlyBudget: monthlyBudget}
}

// Domain 返回所属领域
func (c *FinancialCollector) Domain() monitorModel.Domain {
	return monitorModel.DomainFinancial
}

// Collect 采集本周期的财务指标
// 各项均为比率指标,零值会被误读为健康状态,采集失败时直接缺省
func (c *FinancialCollector) Collect(ctx context.Context) *monitorModel.DomainSnapshot {
	since := time.Now().Add(-overduePaymentWindow)

	ops := []metricOp{
		{
			name: monitorModel.MetricOverduePaymentRatio,
			unit: "ratio",
			fn: func(ctx context.Context) (float64, error) {
				return c.repo.OverduePaymentRatio(ctx, since)
			},
		},
		{
			name: monitorModel.MetricExpenseTrend,
			unit: "ratio",
			fn: func(ctx context.Context) (float64, error) {
				return c.repo.SpendTrendRatio(ctx)
			},
		},
	}

	if c.monthlyBudget > 0 {
		ops = append(ops, metricOp{
			name: monitorModel.MetricBudgetUtilization,
			unit: "ratio",
			fn: func(ctx context.Context) (float64, error) {
				spent, err := c.repo.MonthToDateExpenses(ctx)
				if err != nil {
					return 0, err
				}
				return spent / c.monthlyBudget, nil
			},
		})
	}

	return collectOps(ctx, c.Domain(), ops)
}
