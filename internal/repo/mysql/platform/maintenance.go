/**
 * 平台数据仓库层:维修工单
 * @author: sun977
 * @date: 2025.11.14
 * @description: 维修工单只读统计
 * @func: 单纯数据访问，不包含业务逻辑
 */
package platform

import (
	"context"
	"time"

	"gorm.io/gorm"

	platformModel "neowatch/internal/model/platform"
)

// MaintenanceRepository 维修工单只读仓库
type MaintenanceRepository struct {
	repositoryBase
}

// NewMaintenanceRepository 创建维修工单仓库实例
func NewMaintenanceRepository(db *gorm.DB, timeout time.Duration) *MaintenanceRepository {
	return &MaintenanceRepository{repositoryBase{db: db, timeout: timeout}}
}

// CountPending 统计待处理工单数
func (r *MaintenanceRepository) CountPending(ctx context.Context) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.MaintenanceRequest{}).
		Where("status = ?", platformModel.MaintenanceStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountPending")
	}
	return count, nil
}

// CountHighPriorityPending 统计高优先级待处理工单数
func (r *MaintenanceRepository) CountHighPriorityPending(ctx context.Context) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.MaintenanceRequest{}).
		Where("status = ? AND priority IN ?",
			platformModel.MaintenanceStatusPending,
			[]string{platformModel.MaintenancePriorityHigh, platformModel.MaintenancePriorityUrgent}).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountHighPriorityPending")
	}
	return count, nil
}

// AverageResponseHours 统计指定时间之后创建且已响应工单的平均响应时长(小时)
// 窗口内无已响应工单时返回0
func (r *MaintenanceRepository) AverageResponseHours(ctx context.Context, since time.Time) (float64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var avg *float64
	err := session.Model(&platformModel.MaintenanceRequest{}).
		Select("AVG(TIMESTAMPDIFF(SECOND, created_at, responded_at)) / 3600").
		Where("responded_at IS NOT NULL AND created_at >= ?", since).
		Scan(&avg).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.AverageResponseHours")
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
