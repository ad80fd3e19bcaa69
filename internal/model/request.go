/**
 * 模型:请求模型
 * @author: sun977
 * @date: 2025.11.14
 * @description: API请求数据模型
 * @func: 告警操作相关Request结构体定义
 */
package model

// ResolveAlertRequest 手动解决告警请求
type ResolveAlertRequest struct {
	Note string `json:"note" binding:"max=500"` // 解决备注，可为空
}
