/**
 * 模型:安全事件
 * @author: sun977
 * @date: 2025.11.14
 * @description: 安全事件数据模型，监控引擎只读
 * @func: SecurityEvent结构体定义
 */
package platform

import (
	model "neowatch/internal/model/basemodel"
)

// 安全事件类型
const (
	SecurityEventFailedLogin        = "failed_login"        // 登录失败
	SecurityEventSuspiciousActivity = "suspicious_activity" // 可疑行为
	SecurityEventAccessDenied       = "access_denied"       // 越权访问
)

// 安全事件严重级别
const (
	SecuritySeverityLow      = "low"
	SecuritySeverityMedium   = "medium"
	SecuritySeverityHigh     = "high"
	SecuritySeverityCritical = "critical"
)

// SecurityEvent 安全事件记录
// 平台各入口写入，监控引擎按时间窗口做只读计数
type SecurityEvent struct {
	model.BaseModel
	EventType   string `json:"event_type" gorm:"index;not null;size:50;comment:事件类型"` // 事件类型
	Severity    string `json:"severity" gorm:"index;size:20;comment:严重级别"`            // 严重级别
	SourceIP    string `json:"source_ip" gorm:"size:45;comment:来源IP"`                 // 来源IP
	ResidentID  uint64 `json:"resident_id" gorm:"index;comment:关联住户ID"`               // 关联住户ID，可为0
	Description string `json:"description" gorm:"size:500;comment:事件描述"`              // 事件描述
}

// TableName 指定表名
func (SecurityEvent) TableName() string {
	return "security_events"
}
