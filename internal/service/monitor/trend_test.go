/**
 * 趋势分析器测试
 * @author: sun977
 * @date: 2025.11.15
 * @description: 验证最小样本门槛、方向判定、置信度与窗口淘汰
 */
package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	monitorModel "neowatch/internal/model/monitor"
)

func trendMetric(value float64, at time.Time) monitorModel.Metric {
	return monitorModel.Metric{
		Name:      monitorModel.MetricErrorRate,
		Domain:    monitorModel.DomainPerformance,
		Value:     value,
		Timestamp: at,
	}
}

func feedValues(t *TrendAnalyzer, values []float64) {
	base := time.Now().Add(-time.Duration(len(values)) * time.Minute)
	for i, v := range values {
		t.Observe(trendMetric(v, base.Add(time.Duration(i)*time.Minute)))
	}
}

func predictionFor(t *testing.T, analyzer *TrendAnalyzer, name string) monitorModel.TrendPrediction {
	t.Helper()
	for _, p := range analyzer.Predictions("") {
		if p.MetricName == name {
			return p
		}
	}
	t.Fatalf("no prediction for metric %s", name)
	return monitorModel.TrendPrediction{}
}

func TestTrendBelowMinSamples(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 5, 0.001)
	feedValues(analyzer, []float64{1, 2, 3, 4})

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, monitorModel.TrendStable, p.Direction)
	assert.Zero(t, p.Confidence)
	assert.Equal(t, 4, p.Samples)
}

func TestTrendIncreasing(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 5, 0.001)
	feedValues(analyzer, []float64{1, 2, 3, 4, 5, 6})

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, monitorModel.TrendIncreasing, p.Direction)
	assert.InDelta(t, 1.0, p.Slope, 1e-9)
	// 理想直线无残差,置信度拉满
	assert.InDelta(t, 1.0, p.Confidence, 1e-9)
	assert.Equal(t, 5*time.Minute, p.Horizon)
}

func TestTrendDecreasing(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 5, 0.001)
	feedValues(analyzer, []float64{10, 8, 6, 4, 2})

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, monitorModel.TrendDecreasing, p.Direction)
	assert.True(t, p.Slope < 0)
}

func TestTrendStableWithinEpsilon(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 5, 0.1)
	feedValues(analyzer, []float64{5, 5.01, 5, 5.02, 5.01})

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, monitorModel.TrendStable, p.Direction)
}

func TestTrendConstantSeriesFullConfidence(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 5, 0.001)
	feedValues(analyzer, []float64{3, 3, 3, 3, 3})

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, monitorModel.TrendStable, p.Direction)
	assert.Equal(t, 1.0, p.Confidence)
}

// 同样的上升趋势,噪声越大置信度越低
func TestTrendConfidenceDropsWithNoise(t *testing.T) {
	clean := NewTrendAnalyzer(50, 5, 0.001)
	feedValues(clean, []float64{1, 2, 3, 4, 5, 6, 7, 8})

	noisy := NewTrendAnalyzer(50, 5, 0.001)
	feedValues(noisy, []float64{1, 3.5, 2, 5.5, 4, 7.5, 6, 8})

	cleanP := predictionFor(t, clean, monitorModel.MetricErrorRate)
	noisyP := predictionFor(t, noisy, monitorModel.MetricErrorRate)

	assert.Equal(t, monitorModel.TrendIncreasing, cleanP.Direction)
	assert.Equal(t, monitorModel.TrendIncreasing, noisyP.Direction)
	assert.Greater(t, cleanP.Confidence, noisyP.Confidence)
}

func TestTrendWindowEviction(t *testing.T) {
	analyzer := NewTrendAnalyzer(5, 3, 0.001)

	// 前段下降,后段上升,窗口淘汰后只剩上升段
	feedValues(analyzer, []float64{100, 90, 80, 70, 1, 2, 3, 4, 5})

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, 5, p.Samples)
	assert.Equal(t, monitorModel.TrendIncreasing, p.Direction)
}

func TestTrendSkipsStaleMetrics(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 2, 0.001)

	analyzer.Observe(trendMetric(1, time.Now()))
	stale := trendMetric(1000, time.Now())
	stale.Stale = true
	analyzer.Observe(stale)
	analyzer.Observe(trendMetric(2, time.Now()))

	p := predictionFor(t, analyzer, monitorModel.MetricErrorRate)
	assert.Equal(t, 2, p.Samples, "stale values must not enter the window")
}

func TestPredictionsFilterByDomain(t *testing.T) {
	analyzer := NewTrendAnalyzer(50, 2, 0.001)
	analyzer.Observe(trendMetric(1, time.Now()))
	analyzer.Observe(monitorModel.Metric{
		Name:      monitorModel.MetricPendingMaintenance,
		Domain:    monitorModel.DomainMaintenance,
		Value:     7,
		Timestamp: time.Now(),
	})

	perf := analyzer.Predictions(monitorModel.DomainPerformance)
	assert.Len(t, perf, 1)
	assert.Equal(t, monitorModel.MetricErrorRate, perf[0].MetricName)

	all := analyzer.Predictions("")
	assert.Len(t, all, 2)
}
