/**
 * 模型:阈值与判定
 * @author: sun977
 * @date: 2025.11.14
 * @description: 阈值定义与判定结果数据模型
 * @func: Comparator/Severity/Verdict/Threshold定义
 */
package monitor

// Comparator 阈值比较方向
type Comparator string

const (
	ComparatorGT  Comparator = "gt"  // 大于
	ComparatorGTE Comparator = "gte" // 大于等于
	ComparatorLT  Comparator = "lt"  // 小于
	ComparatorLTE Comparator = "lte" // 小于等于
)

// IsValid 判断比较方向是否合法
func (c Comparator) IsValid() bool {
	switch c {
	case ComparatorGT, ComparatorGTE, ComparatorLT, ComparatorLTE:
		return true
	}
	return false
}

// Ascending 判断是否为"越大越危险"方向
func (c Comparator) Ascending() bool {
	return c == ComparatorGT || c == ComparatorGTE
}

// Severity 告警严重级别
type Severity string

const (
	SeverityWarning  Severity = "warning"  // 警告
	SeverityCritical Severity = "critical" // 严重
)

// Verdict 阈值判定结果
type Verdict string

const (
	VerdictNormal   Verdict = "normal"   // 正常
	VerdictWarning  Verdict = "warning"  // 警告
	VerdictCritical Verdict = "critical" // 严重
)

// Severity 判定结果对应的告警级别，normal返回空
func (v Verdict) Severity() Severity {
	switch v {
	case VerdictWarning:
		return SeverityWarning
	case VerdictCritical:
		return SeverityCritical
	}
	return ""
}

// Threshold 指标阈值定义，启动时加载，运行期不变
type Threshold struct {
	MetricName       string     `json:"metric_name"`       // 指标名称
	Comparator       Comparator `json:"comparator"`        // 比较方向
	WarningLevel     float64    `json:"warning_level"`     // 警告水位
	CriticalLevel    float64    `json:"critical_level"`    // 严重水位
	HysteresisMargin float64    `json:"hysteresis_margin"` // 恢复迟滞边界
}
