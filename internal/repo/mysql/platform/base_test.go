/**
 * 平台数据仓库层测试
 * @author: sun977
 * @date: 2025.11.15
 * @description: 验证底层读取错误到数据源不可用的归类规则
 */
package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	monitorModel "neowatch/internal/model/monitor"
)

func TestClassifyReadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"record not found is a zero value", gorm.ErrRecordNotFound, nil},
		{"wrapped record not found is a zero value", errors.Join(errors.New("query"), gorm.ErrRecordNotFound), nil},
		{"driver error maps to data unavailable", errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"), monitorModel.ErrDataUnavailable},
		{"context deadline maps to data unavailable", context.DeadlineExceeded, monitorModel.ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyReadError(tt.err, "platform.test")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			// 原始错误信息保留在归类结果中，便于排障
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}
}
