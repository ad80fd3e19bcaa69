/**
 * 监控服务层:采集调度器
 * @author: sun977
 * @date: 2025.11.15
 * @description: 按领域独立周期调度采集、阈值评估、告警处理与趋势分析
 * @func: Scheduler
 */
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"neowatch/internal/config"
	monitorModel "neowatch/internal/model/monitor"
	"neowatch/internal/pkg/logger"
)

// Scheduler 监控调度器
// 每个启用的领域由独立 goroutine 驱动,单领域采集异常不影响其他领域
type Scheduler struct {
	collectors map[monitorModel.Domain]Collector
	intervals  map[monitorModel.Domain]time.Duration

	evaluator *Evaluator
	alerts    *AlertManager
	trends    *TrendAnalyzer

	stopTimeout time.Duration

	mu           sync.Mutex
	running      bool
	stopChan     chan struct{}
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	prevVerdicts map[string]monitorModel.Verdict
	lastKnown    map[monitorModel.Domain]*monitorModel.DomainSnapshot
	cycleStatus  map[monitorModel.Domain]monitorModel.CycleStatus
}

// NewScheduler 创建监控调度器
// 仅注册配置中启用的领域,未启用的领域即使传入采集器也不会被调度
func NewScheduler(cfg *config.MonitorConfig, evaluator *Evaluator, alerts *AlertManager, trends *TrendAnalyzer, collectors ...Collector) *Scheduler {
	s := &Scheduler{
		collectors:   make(map[monitorModel.Domain]Collector),
		intervals:    make(map[monitorModel.Domain]time.Duration),
		evaluator:    evaluator,
		alerts:       alerts,
		trends:       trends,
		stopTimeout:  cfg.StopTimeout,
		prevVerdicts: make(map[string]monitorModel.Verdict),
		lastKnown:    make(map[monitorModel.Domain]*monitorModel.DomainSnapshot),
		cycleStatus:  make(map[monitorModel.Domain]monitorModel.CycleStatus),
	}

	domainCfgs := map[monitorModel.Domain]config.DomainConfig{
		monitorModel.DomainPerformance:  cfg.Domains.Performance,
		monitorModel.DomainUserActivity: cfg.Domains.UserActivity,
		monitorModel.DomainSecurity:     cfg.Domains.Security,
		monitorModel.DomainMaintenance:  cfg.Domains.Maintenance,
		monitorModel.DomainFinancial:    cfg.Domains.Financial,
	}

	for _, c := range collectors {
		dc, ok := domainCfgs[c.Domain()]
		if !ok || !dc.Enabled {
			logger.LogSystemEvent("monitor", "domain_disabled", fmt.Sprintf("domain %s collector registered but disabled", c.Domain()), logrus.InfoLevel, nil)
			continue
		}
		s.collectors[c.Domain()] = c
		s.intervals[c.Domain()] = dc.Interval
	}

	return s
}

// Start 启动调度器
// 运行中重复调用为幂等空操作,不产生副作用
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopChan = make(chan struct{})
	s.running = true

	for domain := range s.collectors {
		s.wg.Add(1)
		go s.runDomain(runCtx, s.stopChan, domain)
	}

	logger.LogSystemEvent("monitor", "scheduler_started", "monitor scheduler started", logrus.InfoLevel, map[string]interface{}{
		"domains": len(s.collectors),
	})
	return nil
}

// Stop 停止调度器
// 等待在途采集周期完成,超过 stopTimeout 后强制取消上下文
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return monitorModel.ErrSchedulerNotRunning
	}
	close(s.stopChan)
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		logger.LogSystemEvent("monitor", "scheduler_stopped", "monitor scheduler stopped", logrus.InfoLevel, nil)
	case <-time.After(s.stopTimeout):
		// 超时后取消在途采集,不再等待
		cancel()
		logger.LogSystemEvent("monitor", "scheduler_stop_timeout", "monitor scheduler stop timed out, in-flight cycles cancelled", logrus.WarnLevel, map[string]interface{}{
			"stop_timeout": s.stopTimeout.String(),
		})
	}
	return nil
}

// IsRunning 返回调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Alerts 返回告警管理器
func (s *Scheduler) Alerts() *AlertManager {
	return s.alerts
}

// Trends 返回趋势分析器
func (s *Scheduler) Trends() *TrendAnalyzer {
	return s.trends
}

// runDomain 单领域调度循环,启动后立即执行首个周期
func (s *Scheduler) runDomain(ctx context.Context, stopChan <-chan struct{}, domain monitorModel.Domain) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.intervals[domain])
	defer ticker.Stop()

	s.runCycle(ctx, domain)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopChan:
			return
		case <-ticker.C:
			s.runCycle(ctx, domain)
		}
	}
}

// runCycle 执行单个采集周期:采集 -> 补齐降级指标 -> 评估 -> 告警 -> 趋势
// panic 只终止当前周期,下个周期照常执行
func (s *Scheduler) runCycle(ctx context.Context, domain monitorModel.Domain) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogError(fmt.Errorf("monitor cycle panic: %v", r), "", 0, "", "service.monitor.runCycle", "PANIC", map[string]interface{}{
				"domain": domain,
			})
		}
	}()

	snapshot := s.collectors[domain].Collect(ctx)
	s.mergeLastKnown(domain, snapshot)

	for _, metric := range snapshot.Metrics {
		verdict := s.evaluator.Evaluate(metric, s.previousVerdict(metric.Name))
		s.setPreviousVerdict(metric.Name, verdict)
		s.alerts.ProcessVerdict(metric, verdict)
		s.trends.Observe(metric)
	}

	s.mu.Lock()
	status := s.cycleStatus[domain]
	status.Domain = domain
	status.LastRunAt = snapshot.CollectedAt
	status.Success = len(snapshot.Degraded) == 0
	status.DegradedOps = snapshot.Degraded
	status.CycleCount++
	s.cycleStatus[domain] = status
	s.lastKnown[domain] = snapshot
	s.mu.Unlock()
}

// mergeLastKnown 用上一周期的值补齐本周期降级缺失的指标,并标记为陈旧
// 补齐后的指标仍参与阈值评估,避免告警因短暂的数据源故障被误恢复
func (s *Scheduler) mergeLastKnown(domain monitorModel.Domain, snapshot *monitorModel.DomainSnapshot) {
	if len(snapshot.Degraded) == 0 {
		return
	}

	s.mu.Lock()
	previous := s.lastKnown[domain]
	s.mu.Unlock()
	if previous == nil {
		return
	}

	lastValues := make(map[string]monitorModel.Metric, len(previous.Metrics))
	for _, m := range previous.Metrics {
		lastValues[m.Name] = m
	}

	for _, op := range snapshot.Degraded {
		last, ok := lastValues[op]
		if !ok {
			continue
		}
		stale := last
		stale.Stale = true

		// 采集器对计数类指标降级时会放入0值占位,用上一周期的值顶替占位,
		// 避免0值被判定为恢复正常而误解告警
		replaced := false
		for i, m := range snapshot.Metrics {
			if m.Name == op {
				snapshot.Metrics[i] = stale
				replaced = true
				break
			}
		}
		if !replaced {
			snapshot.Metrics = append(snapshot.Metrics, stale)
		}
	}
}

func (s *Scheduler) previousVerdict(metricName string) monitorModel.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.prevVerdicts[metricName]; ok {
		return v
	}
	return monitorModel.VerdictNormal
}

func (s *Scheduler) setPreviousVerdict(metricName string, verdict monitorModel.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prevVerdicts[metricName] = verdict
}

// Health 返回调度器与各领域最近周期的健康状态
func (s *Scheduler) Health() monitorModel.HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := monitorModel.HealthStatus{
		Running: s.running,
		Domains: make(map[monitorModel.Domain]monitorModel.CycleStatus, len(s.cycleStatus)),
	}
	for domain, cs := range s.cycleStatus {
		status.Domains[domain] = cs
	}
	return status
}

// CurrentMetrics 返回指定领域最近一次采集的指标快照
// 领域未采集过或不存在时返回 nil
func (s *Scheduler) CurrentMetrics(domain monitorModel.Domain) *monitorModel.DomainSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastKnown[domain]
}
