/**
 * 模型:维修工单
 * @author: sun977
 * @date: 2025.11.14
 * @description: 维修工单数据模型，监控引擎只读
 * @func: MaintenanceRequest结构体定义
 */
package platform

import (
	"time"

	model "neowatch/internal/model/basemodel"
)

// 维修工单状态
const (
	MaintenanceStatusPending    = "pending"     // 待处理
	MaintenanceStatusInProgress = "in_progress" // 处理中
	MaintenanceStatusCompleted  = "completed"   // 已完成
	MaintenanceStatusCancelled  = "cancelled"   // 已取消
)

// 维修工单优先级
const (
	MaintenancePriorityLow    = "low"
	MaintenancePriorityMedium = "medium"
	MaintenancePriorityHigh   = "high"
	MaintenancePriorityUrgent = "urgent"
)

// MaintenanceRequest 维修工单
// RespondedAt 为物业首次响应时间，用于计算平均响应时长
type MaintenanceRequest struct {
	model.BaseModel
	ResidentID  uint64     `json:"resident_id" gorm:"index;comment:提交住户ID"`            // 提交住户ID
	Title       string     `json:"title" gorm:"not null;size:200;comment:工单标题"`        // 工单标题
	Description string     `json:"description" gorm:"size:2000;comment:问题描述"`          // 问题描述
	Status      string     `json:"status" gorm:"index;not null;size:20;comment:工单状态"`  // 工单状态
	Priority    string     `json:"priority" gorm:"index;not null;size:20;comment:优先级"` // 优先级
	RespondedAt *time.Time `json:"responded_at" gorm:"comment:首次响应时间"`                 // 首次响应时间
	CompletedAt *time.Time `json:"completed_at" gorm:"comment:完成时间"`                   // 完成时间
}

// TableName 指定表名
func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}
