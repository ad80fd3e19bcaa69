/**
 * 模型:告警
 * @author: sun977
 * @date: 2025.11.14
 * @description: 告警生命周期数据模型
 * @func: AlertStatus/Alert/AlertEvent/DedupKey定义
 */
package monitor

import (
	"fmt"
	"time"
)

// AlertStatus 告警状态
// 状态机: open -> acknowledged -> resolved，允许open直接到resolved
type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "open"         // 打开
	AlertStatusAcknowledged AlertStatus = "acknowledged" // 已确认
	AlertStatusResolved     AlertStatus = "resolved"     // 已解决
)

// DedupKey 告警去重键，同一键同一时刻最多存在一条open告警
type DedupKey struct {
	MetricName string   `json:"metric_name"` // 指标名称
	Severity   Severity `json:"severity"`    // 严重级别
}

// String 返回去重键的字符串形式
func (k DedupKey) String() string {
	return fmt.Sprintf("%s:%s", k.MetricName, string(k.Severity))
}

// Alert 告警记录
// 严重级别变化通过"解决旧告警+新建告警"完成，不原地修改severity
type Alert struct {
	ID             string      `json:"id"`                        // 告警唯一标识
	MetricName     string      `json:"metric_name"`               // 指标名称
	Domain         Domain      `json:"domain"`                    // 所属领域
	Severity       Severity    `json:"severity"`                  // 严重级别
	Message        string      `json:"message"`                   // 告警消息，包含触发时的指标值
	Status         AlertStatus `json:"status"`                    // 当前状态
	OpenedAt       time.Time   `json:"opened_at"`                 // 打开时间
	LastSeenAt     time.Time   `json:"last_seen_at"`              // 最近一次命中去重的时间
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"` // 确认时间
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`     // 解决时间
	ResolutionNote string      `json:"resolution_note,omitempty"` // 解决备注
}

// Key 返回告警的去重键
func (a *Alert) Key() DedupKey {
	return DedupKey{MetricName: a.MetricName, Severity: a.Severity}
}

// IsActive 判断告警是否处于未解决状态
func (a *Alert) IsActive() bool {
	return a.Status == AlertStatusOpen || a.Status == AlertStatusAcknowledged
}

// AlertEventType 告警事件类型
type AlertEventType string

const (
	AlertEventOpened   AlertEventType = "alert-opened"   // 告警打开
	AlertEventResolved AlertEventType = "alert-resolved" // 告警解决
)

// AlertEvent 告警事件，供仪表盘/通知协作方消费的只读事件流条目
type AlertEvent struct {
	Type       AlertEventType `json:"type"`           // 事件类型
	AlertID    string         `json:"alert_id"`       // 告警ID
	MetricName string         `json:"metric_name"`    // 指标名称
	Severity   Severity       `json:"severity"`       // 严重级别
	Message    string         `json:"message"`        // 事件消息
	Note       string         `json:"note,omitempty"` // 解决备注
	Timestamp  time.Time      `json:"timestamp"`      // 事件时间
}
