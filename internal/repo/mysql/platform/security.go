/**
 * 平台数据仓库层:安全事件
 * @author: sun977
 * @date: 2025.11.14
 * @description: 安全事件只读统计
 * @func: 单纯数据访问，不包含业务逻辑
 */
package platform

import (
	"context"
	"time"

	"gorm.io/gorm"

	platformModel "neowatch/internal/model/platform"
)

// SecurityRepository 安全事件只读仓库
type SecurityRepository struct {
	repositoryBase
}

// NewSecurityRepository 创建安全事件仓库实例
func NewSecurityRepository(db *gorm.DB, timeout time.Duration) *SecurityRepository {
	return &SecurityRepository{repositoryBase{db: db, timeout: timeout}}
}

// CountEventsSince 统计指定时间之后的安全事件总数
func (r *SecurityRepository) CountEventsSince(ctx context.Context, since time.Time) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.SecurityEvent{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountEventsSince")
	}
	return count, nil
}

// CountFailedLoginsSince 统计指定时间之后的登录失败事件数
func (r *SecurityRepository) CountFailedLoginsSince(ctx context.Context, since time.Time) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.SecurityEvent{}).
		Where("event_type = ? AND created_at >= ?", platformModel.SecurityEventFailedLogin, since).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountFailedLoginsSince")
	}
	return count, nil
}

// CountHighSeverityEventsSince 统计指定时间之后的高危安全事件数
func (r *SecurityRepository) CountHighSeverityEventsSince(ctx context.Context, since time.Time) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.SecurityEvent{}).
		Where("severity IN ? AND created_at >= ?",
			[]string{platformModel.SecuritySeverityHigh, platformModel.SecuritySeverityCritical}, since).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountHighSeverityEventsSince")
	}
	return count, nil
}
