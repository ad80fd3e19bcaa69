/**
 * 平台数据仓库层:公共基座
 * @author: sun977
 * @date: 2025.11.14
 * @description: 平台业务库只读访问的公共部分，每次调用独立申请带超时的会话
 * @func: 作用域会话获取与不可用错误归类
 * @note: 监控采集属于后台任务，不依赖任何请求级上下文，所有资源按调用申请与释放
 */
package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	monitorModel "neowatch/internal/model/monitor"
	"neowatch/internal/pkg/logger"
)

// repositoryBase 只读仓库公共基座
type repositoryBase struct {
	db      *gorm.DB
	timeout time.Duration // 单次读取的超时时间
}

// scoped 返回绑定了带超时上下文的gorm会话
// 调用方必须defer cancel，保证资源在本次调用内释放
func (r *repositoryBase) scoped(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(tctx), cancel
}

// classifyReadError 将底层读取错误归类
// 记录不存在视为零值而非错误，其余一律归为数据源不可用
func classifyReadError(err error, funcName string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}

	// 不可用属于周期内可恢复错误，仅记录调试日志，由采集方决定降级
	logger.Debugf("platform store read failed in %s: %v", funcName, err)

	return fmt.Errorf("%w: %v", monitorModel.ErrDataUnavailable, err)
}
