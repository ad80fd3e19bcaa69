/**
 * 平台数据仓库层:用户活跃度
 * @author: sun977
 * @date: 2025.11.14
 * @description: 住户活跃度只读统计
 * @func: 单纯数据访问，不包含业务逻辑
 */
package platform

import (
	"context"
	"time"

	"gorm.io/gorm"

	platformModel "neowatch/internal/model/platform"
)

// ActivityRepository 住户活跃度只读仓库
type ActivityRepository struct {
	repositoryBase
}

// NewActivityRepository 创建住户活跃度仓库实例
func NewActivityRepository(db *gorm.DB, timeout time.Duration) *ActivityRepository {
	return &ActivityRepository{repositoryBase{db: db, timeout: timeout}}
}

// CountActiveUsers 统计指定时间之后有登录行为的住户数
func (r *ActivityRepository) CountActiveUsers(ctx context.Context, since time.Time) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.Resident{}).
		Where("last_login_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountActiveUsers")
	}
	return count, nil
}

// CountNewRegistrations 统计指定时间之后注册的住户数
func (r *ActivityRepository) CountNewRegistrations(ctx context.Context, since time.Time) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.Resident{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountNewRegistrations")
	}
	return count, nil
}

// CountRecentLogins 统计指定时间之后有登录记录的住户数
// 平台只记录最后登录时间，同一住户窗口内多次登录计1次
func (r *ActivityRepository) CountRecentLogins(ctx context.Context, since time.Time) (int64, error) {
	session, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	err := session.Model(&platformModel.Resident{}).
		Where("last_login_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, classifyReadError(err, "repo.mysql.platform.CountRecentLogins")
	}
	return count, nil
}
