/**
 * 模型:趋势预测
 * @author: sun977
 * @date: 2025.11.14
 * @description: 趋势方向与预测数据模型
 * @func: TrendDirection/TrendPrediction定义
 */
package monitor

import "time"

// TrendDirection 趋势方向
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing" // 上升
	TrendDecreasing TrendDirection = "decreasing" // 下降
	TrendStable     TrendDirection = "stable"     // 平稳
)

// TrendPrediction 单个指标的趋势预测
// 每个采集周期重算，只保留最新一份，不做持久化
type TrendPrediction struct {
	MetricName string         `json:"metric_name"` // 指标名称
	Domain     Domain         `json:"domain"`      // 所属领域
	Direction  TrendDirection `json:"direction"`   // 趋势方向
	Confidence float64        `json:"confidence"`  // 置信度 [0,1]
	Slope      float64        `json:"slope"`       // 最小二乘斜率
	Samples    int            `json:"samples"`     // 窗口内样本数
	Horizon    time.Duration  `json:"horizon"`     // 窗口覆盖的时间跨度
	UpdatedAt  time.Time      `json:"updated_at"`  // 最近更新时间
}
