/**
 * 性能统计仓库层测试
 * @author: sun977
 * @date: 2025.11.15
 * @description: 验证Redis错误归类与分位数计算
 */
package redis

import (
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"

	monitorModel "neowatch/internal/model/monitor"
)

func TestClassifyRedisError(t *testing.T) {
	assert.NoError(t, classifyRedisError(nil))

	// 键不存在视为零值而非错误
	assert.NoError(t, classifyRedisError(redis.Nil))

	err := classifyRedisError(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"))
	assert.ErrorIs(t, err, monitorModel.ErrDataUnavailable)
}

func TestPercentileNearestRank(t *testing.T) {
	samples := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	assert.Equal(t, 50.0, percentile(samples, 0.50))
	assert.Equal(t, 100.0, percentile(samples, 0.95))
	assert.Equal(t, 10.0, percentile(samples, 0.01))

	// 单样本时任何分位都取该样本
	assert.Equal(t, 42.0, percentile([]float64{42}, 0.95))
}
