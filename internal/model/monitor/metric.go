/**
 * 模型:监控指标
 * @author: sun977
 * @date: 2025.11.14
 * @description: 监控领域与指标数据模型
 * @func: Domain/Metric/DomainSnapshot/CycleStatus定义
 */
package monitor

import "time"

// Domain 监控领域
type Domain string

const (
	DomainPerformance  Domain = "performance"   // 系统性能
	DomainUserActivity Domain = "user_activity" // 用户活跃度
	DomainSecurity     Domain = "security"      // 安全事件
	DomainMaintenance  Domain = "maintenance"   // 维修工单
	DomainFinancial    Domain = "financial"     // 财务健康
)

// AllDomains 所有监控领域，调度器按此集合建立各自的采集循环
var AllDomains = []Domain{
	DomainPerformance,
	DomainUserActivity,
	DomainSecurity,
	DomainMaintenance,
	DomainFinancial,
}

// IsValid 判断领域取值是否合法
func (d Domain) IsValid() bool {
	switch d {
	case DomainPerformance, DomainUserActivity, DomainSecurity, DomainMaintenance, DomainFinancial:
		return true
	}
	return false
}

// 指标名称常量
// 每个领域的操作集合是固定的，名称同时作为阈值配置和趋势窗口的键
const (
	MetricResponseTimeP50    = "system_response_time_p50"
	MetricResponseTimeP95    = "system_response_time_p95"
	MetricErrorRate          = "system_error_rate"
	MetricConcurrentSessions = "concurrent_sessions"

	MetricActiveUsers      = "active_users"
	MetricNewRegistrations = "new_registrations"
	MetricLoginFrequency   = "login_frequency"

	MetricSecurityEvents     = "security_events"
	MetricFailedLogins       = "failed_logins"
	MetricHighSeverityEvents = "high_severity_events"

	MetricPendingMaintenance      = "pending_maintenance"
	MetricHighPriorityMaintenance = "high_priority_maintenance"
	MetricMaintenanceResponseTime = "maintenance_response_time"

	MetricOverduePaymentRatio = "overdue_payment_ratio"
	MetricExpenseTrend        = "expense_trend"
	MetricBudgetUtilization   = "budget_utilization"
)

// Metric 单个监控指标，采集产出后不可变
type Metric struct {
	Name      string            `json:"name"`           // 指标名称
	Domain    Domain            `json:"domain"`         // 所属领域
	Value     float64           `json:"value"`          // 指标值
	Unit      string            `json:"unit"`           // 单位
	Timestamp time.Time         `json:"timestamp"`      // 采集时间
	Stale     bool              `json:"stale"`          // 是否为降级保留的旧值
	Tags      map[string]string `json:"tags,omitempty"` // 附加标签
}

// DomainSnapshot 单个领域一次采集周期的产出
// Degraded 记录本周期未能取到新值的操作名，部分失败不影响其余指标
type DomainSnapshot struct {
	Domain      Domain    `json:"domain"`       // 领域
	Metrics     []Metric  `json:"metrics"`      // 本周期采集到的指标
	Degraded    []string  `json:"degraded"`     // 降级的操作名列表
	CollectedAt time.Time `json:"collected_at"` // 采集完成时间
}

// IsDegraded 判断指定操作本周期是否降级
func (s *DomainSnapshot) IsDegraded(operation string) bool {
	for _, op := range s.Degraded {
		if op == operation {
			return true
		}
	}
	return false
}

// CycleStatus 单个领域最近一次采集周期的执行状态，供健康探针查询
type CycleStatus struct {
	Domain      Domain    `json:"domain"`                 // 领域
	LastRunAt   time.Time `json:"last_run_at"`            // 最近一次周期完成时间
	Success     bool      `json:"success"`                // 本周期是否全部指标采集成功
	DegradedOps []string  `json:"degraded_ops,omitempty"` // 降级的操作名列表
	CycleCount  uint64    `json:"cycle_count"`            // 累计执行周期数
}

// HealthStatus 调度器健康状态
type HealthStatus struct {
	Running bool                   `json:"running"` // 调度器是否运行中
	Domains map[Domain]CycleStatus `json:"domains"` // 各领域最近周期状态
}
