/**
 * 监控服务层:阈值判定器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 纯函数式阈值判定，带恢复迟滞，防止告警抖动
 * @func: Evaluate 对单个指标给出 normal/warning/critical 判定
 * @note: 判定器自身无状态，上一周期判定结果由调用方传入，可安全并发调用
 */
package monitor

import (
	"neowatch/internal/config"
	monitorModel "neowatch/internal/model/monitor"
)

// Evaluator 阈值判定器
type Evaluator struct {
	thresholds map[string]monitorModel.Threshold // 指标名 -> 阈值定义
}

// NewEvaluator 创建阈值判定器
func NewEvaluator(thresholds []monitorModel.Threshold) *Evaluator {
	m := make(map[string]monitorModel.Threshold, len(thresholds))
	for _, t := range thresholds {
		m[t.MetricName] = t
	}
	return &Evaluator{thresholds: m}
}

// NewEvaluatorFromConfig 从配置构建阈值判定器
func NewEvaluatorFromConfig(cfgs []config.ThresholdConfig) *Evaluator {
	thresholds := make([]monitorModel.Threshold, 0, len(cfgs))
	for _, c := range cfgs {
		thresholds = append(thresholds, monitorModel.Threshold{
			MetricName:       c.Metric,
			Comparator:       monitorModel.Comparator(c.Comparator),
			WarningLevel:     c.Warning,
			CriticalLevel:    c.Critical,
			HysteresisMargin: c.Hysteresis,
		})
	}
	return NewEvaluator(thresholds)
}

// Threshold 查询指标的阈值定义
func (e *Evaluator) Threshold(metricName string) (monitorModel.Threshold, bool) {
	t, ok := e.thresholds[metricName]
	return t, ok
}

// Evaluate 判定单个指标
// previous 为该指标上一周期的判定结果，用于恢复迟滞:
// 处于 warning/critical 的指标只有越过 level-hysteresis(上行阈值，下行镜像)
// 才回到 normal，否则维持原判定。未配置阈值的指标一律 normal。
func (e *Evaluator) Evaluate(metric monitorModel.Metric, previous monitorModel.Verdict) monitorModel.Verdict {
	threshold, ok := e.thresholds[metric.Name]
	if !ok {
		return monitorModel.VerdictNormal
	}

	raw := rawVerdict(threshold, metric.Value)
	if raw == previous {
		return raw
	}

	// 只有降级方向需要迟滞，升级方向立即生效
	switch {
	case previous == monitorModel.VerdictCritical && raw != monitorModel.VerdictCritical:
		if !crossedBack(threshold, threshold.CriticalLevel, metric.Value) {
			return monitorModel.VerdictCritical
		}
	case previous == monitorModel.VerdictWarning && raw == monitorModel.VerdictNormal:
		if !crossedBack(threshold, threshold.WarningLevel, metric.Value) {
			return monitorModel.VerdictWarning
		}
	}

	return raw
}

// rawVerdict 不带迟滞的原始判定，先比较critical再比较warning
func rawVerdict(t monitorModel.Threshold, value float64) monitorModel.Verdict {
	if exceeds(t.Comparator, value, t.CriticalLevel) {
		return monitorModel.VerdictCritical
	}
	if exceeds(t.Comparator, value, t.WarningLevel) {
		return monitorModel.VerdictWarning
	}
	return monitorModel.VerdictNormal
}

// exceeds 判断指标值是否越过水位
func exceeds(c monitorModel.Comparator, value, level float64) bool {
	switch c {
	case monitorModel.ComparatorGT:
		return value > level
	case monitorModel.ComparatorGTE:
		return value >= level
	case monitorModel.ComparatorLT:
		return value < level
	case monitorModel.ComparatorLTE:
		return value <= level
	}
	return false
}

// crossedBack 判断指标值是否已越过迟滞边界回到安全区
func crossedBack(t monitorModel.Threshold, level, value float64) bool {
	if t.Comparator.Ascending() {
		return value <= level-t.HysteresisMargin
	}
	return value >= level+t.HysteresisMargin
}
