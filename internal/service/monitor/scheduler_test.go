/**
 * 采集调度器测试
 * @author: sun977
 * @date: 2025.11.15
 * @description: 验证启停状态机、领域隔离、降级补值与健康探针
 */
package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"neowatch/internal/config"
	monitorModel "neowatch/internal/model/monitor"
)

// fakeCollector 可编程的领域采集器
type fakeCollector struct {
	domain   monitorModel.Domain
	cycles   int64
	snapshot func(cycle int64) *monitorModel.DomainSnapshot
}

func (f *fakeCollector) Domain() monitorModel.Domain {
	return f.domain
}

func (f *fakeCollector) Collect(ctx context.Context) *monitorModel.DomainSnapshot {
	cycle := atomic.AddInt64(&f.cycles, 1)
	return f.snapshot(cycle)
}

func staticSnapshot(domain monitorModel.Domain, value float64) func(int64) *monitorModel.DomainSnapshot {
	return func(int64) *monitorModel.DomainSnapshot {
		return &monitorModel.DomainSnapshot{
			Domain: domain,
			Metrics: []monitorModel.Metric{
				{
					Name:      monitorModel.MetricPendingMaintenance,
					Domain:    domain,
					Value:     value,
					Unit:      "count",
					Timestamp: time.Now(),
				},
			},
			Degraded:    []string{},
			CollectedAt: time.Now(),
		}
	}
}

func testMonitorConfig(interval time.Duration) *config.MonitorConfig {
	return &config.MonitorConfig{
		Enabled:     true,
		StopTimeout: time.Second,
		Domains: config.DomainsConfig{
			Performance:  config.DomainConfig{Enabled: true, Interval: interval},
			UserActivity: config.DomainConfig{Enabled: true, Interval: interval},
			Security:     config.DomainConfig{Enabled: true, Interval: interval},
			Maintenance:  config.DomainConfig{Enabled: true, Interval: interval},
			Financial:    config.DomainConfig{Enabled: false, Interval: interval},
		},
	}
}

func newTestScheduler(cfg *config.MonitorConfig, collectors ...Collector) *Scheduler {
	evaluator := newTestEvaluator()
	return NewScheduler(cfg, evaluator, NewAlertManager(100), NewTrendAnalyzer(50, 5, 0.001), collectors...)
}

func TestSchedulerStartStop(t *testing.T) {
	collector := &fakeCollector{
		domain:   monitorModel.DomainMaintenance,
		snapshot: staticSnapshot(monitorModel.DomainMaintenance, 5),
	}
	s := newTestScheduler(testMonitorConfig(10*time.Millisecond), collector)

	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	// 运行中重复启动为幂等空操作,不重复挂载采集循环
	assert.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	// 首个周期立即执行
	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt64(&collector.cycles), int64(1))

	assert.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), monitorModel.ErrSchedulerNotRunning)

	// 停止后不再有新周期
	stopped := atomic.LoadInt64(&collector.cycles)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt64(&collector.cycles))
}

func TestSchedulerSkipsDisabledDomain(t *testing.T) {
	enabled := &fakeCollector{
		domain:   monitorModel.DomainMaintenance,
		snapshot: staticSnapshot(monitorModel.DomainMaintenance, 5),
	}
	disabled := &fakeCollector{
		domain:   monitorModel.DomainFinancial,
		snapshot: staticSnapshot(monitorModel.DomainFinancial, 0.1),
	}
	s := newTestScheduler(testMonitorConfig(10*time.Millisecond), enabled, disabled)

	assert.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, s.Stop())

	assert.Greater(t, atomic.LoadInt64(&enabled.cycles), int64(0))
	assert.Zero(t, atomic.LoadInt64(&disabled.cycles), "disabled domain must never be scheduled")
}

// 指标越线时周期驱动告警打开,回落后恢复
func TestSchedulerDrivesAlerts(t *testing.T) {
	collector := &fakeCollector{
		domain: monitorModel.DomainMaintenance,
		snapshot: func(cycle int64) *monitorModel.DomainSnapshot {
			value := 25.0 // critical
			if cycle > 2 {
				value = 5.0 // 回落
			}
			return staticSnapshot(monitorModel.DomainMaintenance, value)(cycle)
		},
	}
	s := newTestScheduler(testMonitorConfig(10*time.Millisecond), collector)

	assert.NoError(t, s.Start(context.Background()))
	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, s.Stop())

	assert.Empty(t, s.Alerts().List(monitorModel.AlertStatusOpen))
	resolved := s.Alerts().List(monitorModel.AlertStatusResolved)
	assert.Len(t, resolved, 1)
	assert.Equal(t, monitorModel.SeverityCritical, resolved[0].Severity)
}

// 降级周期用上一周期的值顶替0值占位,避免告警被误恢复
func TestSchedulerKeepsLastKnownOnDegradation(t *testing.T) {
	collector := &fakeCollector{
		domain: monitorModel.DomainMaintenance,
		snapshot: func(cycle int64) *monitorModel.DomainSnapshot {
			if cycle == 1 {
				return staticSnapshot(monitorModel.DomainMaintenance, 25)(cycle)
			}
			// 后续周期数据源故障,计数指标降级为0值占位
			return &monitorModel.DomainSnapshot{
				Domain: monitorModel.DomainMaintenance,
				Metrics: []monitorModel.Metric{
					{
						Name:      monitorModel.MetricPendingMaintenance,
						Domain:    monitorModel.DomainMaintenance,
						Value:     0,
						Unit:      "count",
						Timestamp: time.Now(),
						Stale:     true,
					},
				},
				Degraded:    []string{monitorModel.MetricPendingMaintenance},
				CollectedAt: time.Now(),
			}
		},
	}
	s := newTestScheduler(testMonitorConfig(10*time.Millisecond), collector)

	assert.NoError(t, s.Start(context.Background()))
	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, s.Stop())

	// 告警保持打开:降级补入的25仍越过critical水位
	open := s.Alerts().List(monitorModel.AlertStatusOpen)
	assert.Len(t, open, 1)
	assert.Equal(t, monitorModel.SeverityCritical, open[0].Severity)

	current := s.CurrentMetrics(monitorModel.DomainMaintenance)
	assert.NotNil(t, current)
	m, ok := findMetric(current, monitorModel.MetricPendingMaintenance)
	assert.True(t, ok)
	assert.Equal(t, 25.0, m.Value)
	assert.True(t, m.Stale)
}

func TestSchedulerHealth(t *testing.T) {
	healthy := &fakeCollector{
		domain:   monitorModel.DomainMaintenance,
		snapshot: staticSnapshot(monitorModel.DomainMaintenance, 5),
	}
	degraded := &fakeCollector{
		domain: monitorModel.DomainSecurity,
		snapshot: func(cycle int64) *monitorModel.DomainSnapshot {
			return &monitorModel.DomainSnapshot{
				Domain:      monitorModel.DomainSecurity,
				Metrics:     []monitorModel.Metric{},
				Degraded:    []string{monitorModel.MetricFailedLogins},
				CollectedAt: time.Now(),
			}
		},
	}
	s := newTestScheduler(testMonitorConfig(10*time.Millisecond), healthy, degraded)

	assert.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)

	health := s.Health()
	assert.True(t, health.Running)

	maintenance := health.Domains[monitorModel.DomainMaintenance]
	assert.True(t, maintenance.Success)
	assert.Greater(t, maintenance.CycleCount, uint64(0))
	assert.False(t, maintenance.LastRunAt.IsZero())

	security := health.Domains[monitorModel.DomainSecurity]
	assert.False(t, security.Success)
	assert.Equal(t, []string{monitorModel.MetricFailedLogins}, security.DegradedOps)

	assert.NoError(t, s.Stop())
	assert.False(t, s.Health().Running)
}

// 单领域采集panic只终止当前周期,后续周期与其他领域不受影响
func TestSchedulerCyclePanicIsolated(t *testing.T) {
	var panics int64
	flaky := &fakeCollector{
		domain: monitorModel.DomainSecurity,
		snapshot: func(cycle int64) *monitorModel.DomainSnapshot {
			if cycle == 1 {
				atomic.AddInt64(&panics, 1)
				panic("collector exploded")
			}
			return staticSnapshot(monitorModel.DomainSecurity, 1)(cycle)
		},
	}
	steady := &fakeCollector{
		domain:   monitorModel.DomainMaintenance,
		snapshot: staticSnapshot(monitorModel.DomainMaintenance, 5),
	}
	s := newTestScheduler(testMonitorConfig(10*time.Millisecond), flaky, steady)

	assert.NoError(t, s.Start(context.Background()))
	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, s.Stop())

	assert.Equal(t, int64(1), atomic.LoadInt64(&panics))
	assert.Greater(t, atomic.LoadInt64(&flaky.cycles), int64(1), "panicked domain must keep running")
	assert.Greater(t, atomic.LoadInt64(&steady.cycles), int64(1))
}
