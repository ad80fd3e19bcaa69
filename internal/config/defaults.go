package config

import "time"

// 监控引擎缺省值
const (
	defaultStopTimeout         = 30 * time.Second // 停止时等待在途周期的缺省上限
	defaultTrendWindowSize     = 50               // 趋势窗口缺省容量
	defaultTrendMinSamples     = 5                // 有效预测所需的缺省最小样本数
	defaultGatewayQueryTimeout = 5 * time.Second  // 网关单次读取的缺省超时
	defaultLatencySampleSize   = 200              // 响应时间采样环缺省容量
	defaultEventHistorySize    = 500              // 告警事件历史缺省保留条数
)
