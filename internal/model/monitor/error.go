/**
 * 模型:错误定义
 * @author: sun977
 * @date: 2025.11.14
 * @description: 监控引擎错误常量定义
 * @func: 各种错误哨兵常量
 */
package monitor

import "errors"

// 监控引擎相关错误
var (
	// 数据访问错误
	ErrDataUnavailable = errors.New("数据源暂时不可用")

	// 告警生命周期错误
	ErrAlertNotFound      = errors.New("告警不存在")
	ErrInvalidAlertState  = errors.New("告警状态不允许该操作")
	ErrDuplicateOpenAlert = errors.New("同一去重键存在多条打开的告警")

	// 调度器错误
	ErrSchedulerNotRunning = errors.New("调度器未运行")

	// 配置错误
	ErrInvalidThreshold = errors.New("阈值定义无效")
)
