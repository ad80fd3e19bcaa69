/**
 * 监控服务层:趋势分析器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 按指标维护有界滚动窗口，最小二乘法计算趋势方向与置信度
 * @func: Observe 追加样本并重算预测，Predictions 查询最新预测
 * @note: 窗口与预测按指标名分键加锁，同名指标串行写入，不同指标并行；
 *        只提供参考性预测，不直接触发告警
 */
package monitor

import (
	"math"
	"sync"
	"time"

	monitorModel "neowatch/internal/model/monitor"
)

// trendSample 窗口中的一个样本
type trendSample struct {
	at    time.Time
	value float64
}

// trendSeries 单个指标的滚动窗口与最新预测
type trendSeries struct {
	mu         sync.Mutex
	domain     monitorModel.Domain
	samples    []trendSample // 有界窗口，最旧的在头部
	prediction monitorModel.TrendPrediction
}

// TrendAnalyzer 趋势分析器
type TrendAnalyzer struct {
	mu           sync.RWMutex            // 保护series map
	series       map[string]*trendSeries // 指标名 -> 窗口
	windowSize   int                     // 窗口容量
	minSamples   int                     // 产生有效预测所需最小样本数
	slopeEpsilon float64                 // 判定方向的斜率阈值
}

// NewTrendAnalyzer 创建趋势分析器
func NewTrendAnalyzer(windowSize, minSamples int, slopeEpsilon float64) *TrendAnalyzer {
	if windowSize <= 0 {
		windowSize = 50
	}
	if minSamples < 2 {
		minSamples = 5
	}
	return &TrendAnalyzer{
		series:       make(map[string]*trendSeries),
		windowSize:   windowSize,
		minSamples:   minSamples,
		slopeEpsilon: slopeEpsilon,
	}
}

// getSeries 获取指标窗口，首次使用时创建
func (t *TrendAnalyzer) getSeries(metric monitorModel.Metric) *trendSeries {
	t.mu.RLock()
	s, ok := t.series[metric.Name]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.series[metric.Name]; ok {
		return s
	}
	s = &trendSeries{
		domain:  metric.Domain,
		samples: make([]trendSample, 0, t.windowSize),
	}
	t.series[metric.Name] = s
	return s
}

// Observe 追加一个指标样本并重算该指标的预测
// 降级保留的旧值不进入窗口，避免同一数值重复压低斜率
func (t *TrendAnalyzer) Observe(metric monitorModel.Metric) {
	if metric.Stale {
		return
	}

	s := t.getSeries(metric)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, trendSample{at: metric.Timestamp, value: metric.Value})
	if len(s.samples) > t.windowSize {
		// 淘汰最旧样本
		s.samples = s.samples[len(s.samples)-t.windowSize:]
	}

	s.prediction = t.compute(metric.Name, s)
}

// compute 重算单个指标的预测，调用方必须持有s.mu
func (t *TrendAnalyzer) compute(metricName string, s *trendSeries) monitorModel.TrendPrediction {
	n := len(s.samples)
	prediction := monitorModel.TrendPrediction{
		MetricName: metricName,
		Domain:     s.domain,
		Direction:  monitorModel.TrendStable,
		Samples:    n,
		UpdatedAt:  time.Now(),
	}
	if n > 0 {
		prediction.Horizon = s.samples[n-1].at.Sub(s.samples[0].at)
	}

	// 样本不足: 数据不够，不是平稳信号
	if n < t.minSamples {
		return prediction
	}

	// 最小二乘: x为样本序号，y为指标值
	var sumX, sumY, sumXY, sumXX float64
	for i, sample := range s.samples {
		x := float64(i)
		sumX += x
		sumY += sample.value
		sumXY += x * sample.value
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return prediction
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	prediction.Slope = slope

	switch {
	case slope > t.slopeEpsilon:
		prediction.Direction = monitorModel.TrendIncreasing
	case slope < -t.slopeEpsilon:
		prediction.Direction = monitorModel.TrendDecreasing
	default:
		prediction.Direction = monitorModel.TrendStable
	}

	// 置信度: 1 - 残差标准差/值域，截断到[0,1]
	var minV, maxV = s.samples[0].value, s.samples[0].value
	var residualSq float64
	for i, sample := range s.samples {
		fitted := intercept + slope*float64(i)
		residualSq += (sample.value - fitted) * (sample.value - fitted)
		if sample.value < minV {
			minV = sample.value
		}
		if sample.value > maxV {
			maxV = sample.value
		}
	}
	valueRange := maxV - minV
	if valueRange == 0 {
		// 全部样本等值: 完全平稳，置信度拉满
		prediction.Confidence = 1
		return prediction
	}

	residualStd := math.Sqrt(residualSq / fn)
	confidence := 1 - residualStd/valueRange
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	prediction.Confidence = confidence
	return prediction
}

// Predictions 查询最新预测，domain为空返回全部指标
func (t *TrendAnalyzer) Predictions(domain monitorModel.Domain) []monitorModel.TrendPrediction {
	t.mu.RLock()
	seriesList := make([]*trendSeries, 0, len(t.series))
	for _, s := range t.series {
		seriesList = append(seriesList, s)
	}
	t.mu.RUnlock()

	result := make([]monitorModel.TrendPrediction, 0, len(seriesList))
	for _, s := range seriesList {
		s.mu.Lock()
		prediction := s.prediction
		hasData := len(s.samples) > 0
		s.mu.Unlock()

		if !hasData {
			continue
		}
		if domain != "" && prediction.Domain != domain {
			continue
		}
		result = append(result, prediction)
	}
	return result
}
