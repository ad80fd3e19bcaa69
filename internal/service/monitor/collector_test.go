/**
 * 指标采集器测试
 * @author: sun977
 * @date: 2025.11.15
 * @description: 验证单操作失败隔离、计数类0值占位与比率类缺省行为
 */
package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	monitorModel "neowatch/internal/model/monitor"
)

// fakeSecurityReader 可按操作注入失败的安全事件读取器
type fakeSecurityReader struct {
	events       int64
	failedLogins int64
	highSeverity int64
	eventsErr    error
	loginsErr    error
	severityErr  error
}

func (f *fakeSecurityReader) CountEventsSince(ctx context.Context, since time.Time) (int64, error) {
	return f.events, f.eventsErr
}

func (f *fakeSecurityReader) CountFailedLoginsSince(ctx context.Context, since time.Time) (int64, error) {
	return f.failedLogins, f.loginsErr
}

func (f *fakeSecurityReader) CountHighSeverityEventsSince(ctx context.Context, since time.Time) (int64, error) {
	return f.highSeverity, f.severityErr
}

type fakeFinanceReader struct {
	overdue     float64
	overdueErr  error
	spend       float64
	spendErr    error
	monthToDate float64
	mtdErr      error
}

func (f *fakeFinanceReader) OverduePaymentRatio(ctx context.Context, since time.Time) (float64, error) {
	return f.overdue, f.overdueErr
}

func (f *fakeFinanceReader) SpendTrendRatio(ctx context.Context) (float64, error) {
	return f.spend, f.spendErr
}

func (f *fakeFinanceReader) MonthToDateExpenses(ctx context.Context) (float64, error) {
	return f.monthToDate, f.mtdErr
}

type fakeActivityReader struct {
	active      int64
	registered  int64
	logins      int64
	loginsErr   error
	activeErr   error
	registerErr error
}

func (f *fakeActivityReader) CountActiveUsers(ctx context.Context, since time.Time) (int64, error) {
	return f.active, f.activeErr
}

func (f *fakeActivityReader) CountNewRegistrations(ctx context.Context, since time.Time) (int64, error) {
	return f.registered, f.registerErr
}

func (f *fakeActivityReader) CountRecentLogins(ctx context.Context, since time.Time) (int64, error) {
	return f.logins, f.loginsErr
}

type fakePerfReader struct {
	percentileCalls int
	p50, p95        float64
	percentilesErr  error
	errorRate       float64
	sessions        int64
}

func (f *fakePerfReader) LatencyPercentiles(ctx context.Context) (float64, float64, error) {
	f.percentileCalls++
	return f.p50, f.p95, f.percentilesErr
}

func (f *fakePerfReader) ErrorRate(ctx context.Context) (float64, error) {
	return f.errorRate, nil
}

func (f *fakePerfReader) CountActiveSessions(ctx context.Context) (int64, error) {
	return f.sessions, nil
}

func findMetric(snapshot *monitorModel.DomainSnapshot, name string) (monitorModel.Metric, bool) {
	for _, m := range snapshot.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return monitorModel.Metric{}, false
}

func TestSecurityCollectorAllHealthy(t *testing.T) {
	c := NewSecurityCollector(&fakeSecurityReader{events: 12, failedLogins: 3, highSeverity: 1})

	snapshot := c.Collect(context.Background())
	assert.Equal(t, monitorModel.DomainSecurity, snapshot.Domain)
	assert.Empty(t, snapshot.Degraded)
	assert.Len(t, snapshot.Metrics, 3)

	m, ok := findMetric(snapshot, monitorModel.MetricFailedLogins)
	assert.True(t, ok)
	assert.Equal(t, 3.0, m.Value)
	assert.False(t, m.Stale)
}

// 单个操作失败不影响同领域其余指标,计数类指标降级为0值占位
func TestSecurityCollectorPartialFailure(t *testing.T) {
	c := NewSecurityCollector(&fakeSecurityReader{
		events:       12,
		highSeverity: 1,
		loginsErr:    monitorModel.ErrDataUnavailable,
	})

	snapshot := c.Collect(context.Background())
	assert.Equal(t, []string{monitorModel.MetricFailedLogins}, snapshot.Degraded)
	assert.True(t, snapshot.IsDegraded(monitorModel.MetricFailedLogins))
	assert.Len(t, snapshot.Metrics, 3)

	degraded, ok := findMetric(snapshot, monitorModel.MetricFailedLogins)
	assert.True(t, ok)
	assert.Zero(t, degraded.Value)
	assert.True(t, degraded.Stale)

	healthy, ok := findMetric(snapshot, monitorModel.MetricSecurityEvents)
	assert.True(t, ok)
	assert.Equal(t, 12.0, healthy.Value)
	assert.False(t, healthy.Stale)
}

// 比率类指标失败时直接缺省,0值会被误读为健康
func TestFinancialCollectorOmitsFailedRatio(t *testing.T) {
	c := NewFinancialCollector(&fakeFinanceReader{
		overdueErr: monitorModel.ErrDataUnavailable,
		spend:      0.15,
	}, 0)

	snapshot := c.Collect(context.Background())
	assert.Equal(t, []string{monitorModel.MetricOverduePaymentRatio}, snapshot.Degraded)
	assert.Len(t, snapshot.Metrics, 1)

	_, ok := findMetric(snapshot, monitorModel.MetricOverduePaymentRatio)
	assert.False(t, ok, "failed ratio metric must be omitted, not zeroed")

	m, ok := findMetric(snapshot, monitorModel.MetricExpenseTrend)
	assert.True(t, ok)
	assert.Equal(t, 0.15, m.Value)
}

// 配置了月度预算时产出预算使用率,未配置时该指标不出现
func TestFinancialCollectorBudgetUtilization(t *testing.T) {
	reader := &fakeFinanceReader{overdue: 0.1, spend: 0.05, monthToDate: 450000}

	withBudget := NewFinancialCollector(reader, 500000)
	snapshot := withBudget.Collect(context.Background())
	assert.Empty(t, snapshot.Degraded)

	m, ok := findMetric(snapshot, monitorModel.MetricBudgetUtilization)
	assert.True(t, ok)
	assert.InDelta(t, 0.9, m.Value, 1e-9)
	assert.Equal(t, "ratio", m.Unit)

	withoutBudget := NewFinancialCollector(reader, 0)
	snapshot = withoutBudget.Collect(context.Background())
	_, ok = findMetric(snapshot, monitorModel.MetricBudgetUtilization)
	assert.False(t, ok, "budget utilization requires a configured budget")
	assert.Len(t, snapshot.Metrics, 2)
}

func TestActivityCollectorLoginFrequency(t *testing.T) {
	c := NewActivityCollector(&fakeActivityReader{active: 40, registered: 2, logins: 17})

	snapshot := c.Collect(context.Background())
	assert.Empty(t, snapshot.Degraded)
	assert.Len(t, snapshot.Metrics, 3)

	m, ok := findMetric(snapshot, monitorModel.MetricLoginFrequency)
	assert.True(t, ok)
	assert.Equal(t, 17.0, m.Value)
	assert.Equal(t, "logins/hour", m.Unit)
}

// 登录频率读取失败时与其他计数指标一致,降级为0值占位
func TestActivityCollectorLoginFrequencyDegrades(t *testing.T) {
	c := NewActivityCollector(&fakeActivityReader{
		active:     40,
		registered: 2,
		loginsErr:  monitorModel.ErrDataUnavailable,
	})

	snapshot := c.Collect(context.Background())
	assert.Equal(t, []string{monitorModel.MetricLoginFrequency}, snapshot.Degraded)

	m, ok := findMetric(snapshot, monitorModel.MetricLoginFrequency)
	assert.True(t, ok)
	assert.Zero(t, m.Value)
	assert.True(t, m.Stale)
}

// p50/p95共享一次采样环读取
func TestPerformanceCollectorSharesPercentileRead(t *testing.T) {
	reader := &fakePerfReader{p50: 120, p95: 450, errorRate: 0.01, sessions: 37}
	c := NewPerformanceCollector(reader)

	snapshot := c.Collect(context.Background())
	assert.Equal(t, 1, reader.percentileCalls)
	assert.Empty(t, snapshot.Degraded)
	assert.Len(t, snapshot.Metrics, 4)

	p50, _ := findMetric(snapshot, monitorModel.MetricResponseTimeP50)
	p95, _ := findMetric(snapshot, monitorModel.MetricResponseTimeP95)
	assert.Equal(t, 120.0, p50.Value)
	assert.Equal(t, 450.0, p95.Value)
}

func TestPerformanceCollectorPercentileFailureDegradesBoth(t *testing.T) {
	reader := &fakePerfReader{percentilesErr: monitorModel.ErrDataUnavailable, errorRate: 0.01, sessions: 5}
	c := NewPerformanceCollector(reader)

	snapshot := c.Collect(context.Background())
	assert.Equal(t, 1, reader.percentileCalls)
	assert.ElementsMatch(t,
		[]string{monitorModel.MetricResponseTimeP50, monitorModel.MetricResponseTimeP95},
		snapshot.Degraded)

	// 分位数缺省,错误率与会话数照常产出
	assert.Len(t, snapshot.Metrics, 2)
}
