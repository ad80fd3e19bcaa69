/**
 * 阈值判定器测试
 * @author: sun977
 * @date: 2025.11.15
 * @description: 验证水位比较、恢复迟滞与未配置指标的默认行为
 */
package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"neowatch/internal/config"
	monitorModel "neowatch/internal/model/monitor"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator([]monitorModel.Threshold{
		{
			MetricName:       monitorModel.MetricPendingMaintenance,
			Comparator:       monitorModel.ComparatorGT,
			WarningLevel:     10,
			CriticalLevel:    20,
			HysteresisMargin: 2,
		},
		{
			MetricName:       monitorModel.MetricActiveUsers,
			Comparator:       monitorModel.ComparatorLT,
			WarningLevel:     100,
			CriticalLevel:    50,
			HysteresisMargin: 5,
		},
	})
}

func metricValue(name string, value float64) monitorModel.Metric {
	return monitorModel.Metric{Name: name, Value: value}
}

func TestEvaluateAscendingThreshold(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name     string
		value    float64
		previous monitorModel.Verdict
		want     monitorModel.Verdict
	}{
		{"normal below warning", 5, monitorModel.VerdictNormal, monitorModel.VerdictNormal},
		{"exactly at warning stays normal for gt", 10, monitorModel.VerdictNormal, monitorModel.VerdictNormal},
		{"above warning", 12, monitorModel.VerdictNormal, monitorModel.VerdictWarning},
		{"above critical", 22, monitorModel.VerdictNormal, monitorModel.VerdictCritical},
		{"upgrade is immediate", 22, monitorModel.VerdictWarning, monitorModel.VerdictCritical},
		{"warning holds inside hysteresis band", 9, monitorModel.VerdictWarning, monitorModel.VerdictWarning},
		{"warning releases at boundary", 8, monitorModel.VerdictWarning, monitorModel.VerdictNormal},
		{"critical holds inside hysteresis band", 19, monitorModel.VerdictCritical, monitorModel.VerdictCritical},
		{"critical downgrades to warning at boundary", 18, monitorModel.VerdictCritical, monitorModel.VerdictWarning},
		{"critical resolves straight to normal", 8, monitorModel.VerdictCritical, monitorModel.VerdictNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(metricValue(monitorModel.MetricPendingMaintenance, tt.value), tt.previous)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateDescendingThreshold(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name     string
		value    float64
		previous monitorModel.Verdict
		want     monitorModel.Verdict
	}{
		{"healthy above warning", 150, monitorModel.VerdictNormal, monitorModel.VerdictNormal},
		{"below warning", 90, monitorModel.VerdictNormal, monitorModel.VerdictWarning},
		{"below critical", 40, monitorModel.VerdictNormal, monitorModel.VerdictCritical},
		{"warning holds inside mirrored band", 103, monitorModel.VerdictWarning, monitorModel.VerdictWarning},
		{"warning releases past mirrored boundary", 105, monitorModel.VerdictWarning, monitorModel.VerdictNormal},
		{"critical holds inside mirrored band", 52, monitorModel.VerdictCritical, monitorModel.VerdictCritical},
		{"critical downgrades past mirrored boundary", 60, monitorModel.VerdictCritical, monitorModel.VerdictWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(metricValue(monitorModel.MetricActiveUsers, tt.value), tt.previous)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateUnknownMetricAlwaysNormal(t *testing.T) {
	e := newTestEvaluator()

	got := e.Evaluate(metricValue("unknown_metric", 99999), monitorModel.VerdictCritical)
	assert.Equal(t, monitorModel.VerdictNormal, got)
}

func TestEvaluateZeroHysteresis(t *testing.T) {
	e := NewEvaluator([]monitorModel.Threshold{
		{
			MetricName:    monitorModel.MetricErrorRate,
			Comparator:    monitorModel.ComparatorGT,
			WarningLevel:  0.02,
			CriticalLevel: 0.05,
		},
	})

	// 无迟滞时回到水位及以下立即恢复
	got := e.Evaluate(metricValue(monitorModel.MetricErrorRate, 0.02), monitorModel.VerdictWarning)
	assert.Equal(t, monitorModel.VerdictNormal, got)
}

func TestNewEvaluatorFromConfig(t *testing.T) {
	e := NewEvaluatorFromConfig([]config.ThresholdConfig{
		{Metric: monitorModel.MetricErrorRate, Comparator: "gt", Warning: 0.02, Critical: 0.05, Hysteresis: 0.005},
	})

	threshold, ok := e.Threshold(monitorModel.MetricErrorRate)
	assert.True(t, ok)
	assert.Equal(t, monitorModel.ComparatorGT, threshold.Comparator)
	assert.Equal(t, 0.05, threshold.CriticalLevel)

	_, ok = e.Threshold("not_configured")
	assert.False(t, ok)
}
