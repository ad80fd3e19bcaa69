/**
 * 性能统计仓库层:运行时计数器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 响应时间采样环、请求/错误分钟桶和活跃会话集合(Redis存储,适合多实例部署)
 * @func: 单纯数据访问,不应该包含业务逻辑
 * @note: 写入方为HTTP访问中间件，读取方为性能领域采集器，两侧都使用各自的有界上下文
 */
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	monitorModel "neowatch/internal/model/monitor"
)

const (
	latencyKey       = "neowatch:perf:latency"  // 响应时间采样环(列表，毫秒)
	requestBucketKey = "neowatch:perf:req:"     // 请求计数分钟桶前缀
	errorBucketKey   = "neowatch:perf:err:"     // 错误计数分钟桶前缀
	sessionKey       = "neowatch:perf:sessions" // 活跃会话有序集合

	bucketTTL     = 15 * time.Minute // 分钟桶保留时长
	rateWindow    = 5                // 错误率统计的分钟桶数
	sessionWindow = 30 * time.Minute // 会话活跃判定窗口
)

// PerfStatsRepository 性能统计存储库
type PerfStatsRepository struct {
	client     *redis.Client
	sampleSize int           // 采样环容量
	timeout    time.Duration // 单次读取的超时时间
}

// NewPerfStatsRepository 创建性能统计存储库实例
func NewPerfStatsRepository(client *redis.Client, sampleSize int, timeout time.Duration) *PerfStatsRepository {
	return &PerfStatsRepository{
		client:     client,
		sampleSize: sampleSize,
		timeout:    timeout,
	}
}

// RecordRequest 记录一次请求及其响应时间(毫秒)，错误请求同时累加错误桶
// 中间件侧调用，失败只影响本次记录
func (r *PerfStatsRepository) RecordRequest(ctx context.Context, latencyMs float64, isError bool) error {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	bucket := minuteBucket(time.Now())

	pipe := r.client.Pipeline()
	pipe.LPush(tctx, latencyKey, strconv.FormatFloat(latencyMs, 'f', 3, 64))
	pipe.LTrim(tctx, latencyKey, 0, int64(r.sampleSize-1))
	reqKey := requestBucketKey + bucket
	pipe.Incr(tctx, reqKey)
	pipe.Expire(tctx, reqKey, bucketTTL)
	if isError {
		errKey := errorBucketKey + bucket
		pipe.Incr(tctx, errKey)
		pipe.Expire(tctx, errKey, bucketTTL)
	}
	if _, err := pipe.Exec(tctx); err != nil {
		return fmt.Errorf("failed to record request stats: %w", err)
	}
	return nil
}

// TouchSession 刷新会话活跃时间
func (r *PerfStatsRepository) TouchSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.client.ZAdd(tctx, sessionKey, &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: sessionID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// LatencyPercentiles 读取采样环并计算p50/p95(毫秒)
// 采样环为空时返回零值
func (r *PerfStatsRepository) LatencyPercentiles(ctx context.Context) (p50, p95 float64, err error) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.client.LRange(tctx, latencyKey, 0, int64(r.sampleSize-1)).Result()
	if err != nil {
		return 0, 0, classifyRedisError(err)
	}
	if len(raw) == 0 {
		return 0, 0, nil
	}

	samples := make([]float64, 0, len(raw))
	for _, s := range raw {
		v, parseErr := strconv.ParseFloat(s, 64)
		if parseErr != nil {
			continue // 脏数据跳过
		}
		samples = append(samples, v)
	}
	if len(samples) == 0 {
		return 0, 0, nil
	}

	sort.Float64s(samples)
	return percentile(samples, 0.50), percentile(samples, 0.95), nil
}

// ErrorRate 统计最近几个分钟桶内的错误请求占比
// 窗口内无请求时返回0
func (r *PerfStatsRepository) ErrorRate(ctx context.Context) (float64, error) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	reqKeys := make([]string, 0, rateWindow)
	errKeys := make([]string, 0, rateWindow)
	for i := 0; i < rateWindow; i++ {
		bucket := minuteBucket(now.Add(-time.Duration(i) * time.Minute))
		reqKeys = append(reqKeys, requestBucketKey+bucket)
		errKeys = append(errKeys, errorBucketKey+bucket)
	}

	requests, err := r.sumBuckets(tctx, reqKeys)
	if err != nil {
		return 0, classifyRedisError(err)
	}
	if requests == 0 {
		return 0, nil
	}

	errorCount, err := r.sumBuckets(tctx, errKeys)
	if err != nil {
		return 0, classifyRedisError(err)
	}

	return float64(errorCount) / float64(requests), nil
}

// CountActiveSessions 清理过期会话后统计活跃会话数
func (r *PerfStatsRepository) CountActiveSessions(ctx context.Context) (int64, error) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cutoff := time.Now().Add(-sessionWindow).Unix()
	if err := r.client.ZRemRangeByScore(tctx, sessionKey, "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return 0, classifyRedisError(err)
	}

	count, err := r.client.ZCard(tctx, sessionKey).Result()
	if err != nil {
		return 0, classifyRedisError(err)
	}
	return count, nil
}

// sumBuckets 汇总一组计数桶，不存在的桶计0
func (r *PerfStatsRepository) sumBuckets(ctx context.Context, keys []string) (int64, error) {
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, v := range values {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, parseErr := strconv.ParseInt(s, 10, 64)
		if parseErr != nil {
			continue
		}
		total += n
	}
	return total, nil
}

// minuteBucket 生成分钟桶键后缀
func minuteBucket(t time.Time) string {
	return strconv.FormatInt(t.Unix()/60, 10)
}

// percentile 计算已排序样本的分位数，使用最近秩法
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p*float64(len(sorted))+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// classifyRedisError 将Redis读取错误归类为数据源不可用
// redis.Nil 视为零值
func classifyRedisError(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%w: %v", monitorModel.ErrDataUnavailable, err)
}
