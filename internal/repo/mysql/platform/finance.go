/**
 * 平台数据仓库层:财务记录
 * @author: sun977
 * @date: 2025.11.14
 * @description: 缴费与支出只读统计
 * @func: 单纯数据访问，不包含业务逻辑
 */
package platform

import (
	"context"
	"time"

	"gorm.io/gorm"

	platformModel "neowatch/internal/model/platform"
)

// FinanceRepository 财务记录只读仓库
type FinanceRepository struct {
	repositoryBase
}

// NewFinanceRepository 创建财务记录仓库实例
func NewFinanceRepository(db *gorm.DB, timeout time.Duration) *FinanceRepository {
	return &FinanceRepository{repositoryBase{db: db, timeout: timeout}}
}

// OverduePaymentRatio 统计指定时间之后到期缴费中的逾期占比
// 窗口内无到期缴费时返回0
func (r *FinanceRepository) OverduePaymentRatio(ctx context.Context, since time.Time) (float64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	now := time.Now()

	var total int64
	err := session.Model(&platformModel.Payment{}).
		Where("due_date >= ? AND due_date <= ?", since, now).
		Count(&total).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.OverduePaymentRatio")
	}
	if total == 0 {
		return 0, nil
	}

	var overdue int64
	err = session.Model(&platformModel.Payment{}).
		Where("due_date >= ? AND due_date <= ? AND status = ?", since, now, platformModel.PaymentStatusOverdue).
		Count(&overdue).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.OverduePaymentRatio")
	}

	return float64(overdue) / float64(total), nil
}

// SpendTrendRatio 统计最近30天支出相对上一个30天的变化率
// 上一周期无支出时返回0，避免除零放大信号
func (r *FinanceRepository) SpendTrendRatio(ctx context.Context) (float64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	now := time.Now()
	currentStart := now.AddDate(0, 0, -30)
	previousStart := now.AddDate(0, 0, -60)

	current, err := r.sumExpenses(session, currentStart, now)
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.SpendTrendRatio")
	}

	previous, err := r.sumExpenses(session, previousStart, currentStart)
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.SpendTrendRatio")
	}

	if previous == 0 {
		return 0, nil
	}
	return (current - previous) / previous, nil
}

// MonthToDateExpenses 汇总本自然月初至今的支出金额
func (r *FinanceRepository) MonthToDateExpenses(ctx context.Context) (float64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	sum, err := r.sumExpenses(session, monthStart, now)
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.MonthToDateExpenses")
	}
	return sum, nil
}

// sumExpenses 汇总时间区间[from, to)内的支出金额
func (r *FinanceRepository) sumExpenses(session *gorm.DB, from, to time.Time) (float64, error) {
	var sum *float64
	err := session.Model(&platformModel.Expense{}).
		Select("SUM(amount)").
		Where("incurred_at >= ? AND incurred_at < ?", from, to).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
