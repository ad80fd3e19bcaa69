/**
 * 监控服务层:告警管理器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 告警生命周期管理，去重、升级、解决与事件流
 * @func: ProcessVerdict/Acknowledge/Resolve/List/Get/History
 * @note: 按指标名分键加锁，同名指标的状态变更串行，不同指标并行；
 *        单个指标处理中的异常不影响同周期其余指标
 */
package monitor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	monitorModel "neowatch/internal/model/monitor"
	"neowatch/internal/pkg/logger"
)

// AlertManager 告警管理器
// 告警集合仅在内存中维护，历史通过有界事件流暴露给协作方
type AlertManager struct {
	mu     sync.RWMutex                                    // 保护三个map与事件环
	alerts map[string]*monitorModel.Alert                  // 全部告警，按ID索引
	open   map[monitorModel.DedupKey][]*monitorModel.Alert // 打开中的告警，按去重键索引
	events []monitorModel.AlertEvent                       // 有界事件环，新事件在尾部
	max    int                                             // 事件环容量

	lockMu   sync.Mutex             // 保护keyLocks
	keyLocks map[string]*sync.Mutex // 指标名 -> 互斥锁
}

// NewAlertManager 创建告警管理器
func NewAlertManager(eventHistorySize int) *AlertManager {
	if eventHistorySize <= 0 {
		eventHistorySize = 500
	}
	return &AlertManager{
		alerts:   make(map[string]*monitorModel.Alert),
		open:     make(map[monitorModel.DedupKey][]*monitorModel.Alert),
		events:   make([]monitorModel.AlertEvent, 0, 64),
		max:      eventHistorySize,
		keyLocks: make(map[string]*sync.Mutex),
	}
}

// metricLock 获取指标级锁，首次使用时创建
// 升级/降级会同时触碰同一指标的warning与critical两个去重键，
// 因此锁粒度取指标名而非去重键，保证跨键转换的原子性
func (m *AlertManager) metricLock(metricName string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	lock, ok := m.keyLocks[metricName]
	if !ok {
		lock = &sync.Mutex{}
		m.keyLocks[metricName] = lock
	}
	return lock
}

// ProcessVerdict 处理一个指标的判定结果，驱动告警状态机
// 内部吞掉panic，保证单指标异常不打断同周期其余指标的处理
func (m *AlertManager) ProcessVerdict(metric monitorModel.Metric, verdict monitorModel.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogError(
				fmt.Errorf("panic while processing verdict: %v", r),
				"", 0, "", "service.monitor.alert.ProcessVerdict", "",
				map[string]interface{}{
					"operation": "process_verdict",
					"func_name": "service.monitor.alert.ProcessVerdict",
					"metric":    metric.Name,
					"verdict":   string(verdict),
				},
			)
		}
	}()

	lock := m.metricLock(metric.Name)
	lock.Lock()
	defer lock.Unlock()

	m.repairDuplicates(metric.Name)

	switch verdict {
	case monitorModel.VerdictWarning, monitorModel.VerdictCritical:
		m.raise(metric, verdict.Severity())
	case monitorModel.VerdictNormal:
		m.clear(metric)
	}
}

// raise 按判定级别打开或维持告警
func (m *AlertManager) raise(metric monitorModel.Metric, severity monitorModel.Severity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	key := monitorModel.DedupKey{MetricName: metric.Name, Severity: severity}

	// 同键已有打开告警: 去重，仅刷新最近命中时间
	if existing := m.firstOpenLocked(key); existing != nil {
		existing.LastSeenAt = now
		return
	}

	// 另一级别存在打开告警: 级别变化建模为"解决旧告警+新建告警"
	other := m.otherSeverityOpenLocked(metric.Name, severity)
	if other != nil {
		note := "escalated"
		if severity == monitorModel.SeverityWarning {
			note = "de-escalated"
		}
		m.resolveLocked(other, note, now)
	}

	alert := &monitorModel.Alert{
		ID:         uuid.New().String(),
		MetricName: metric.Name,
		Domain:     metric.Domain,
		Severity:   severity,
		Message:    fmt.Sprintf("%s=%.4g breached %s threshold", metric.Name, metric.Value, string(severity)),
		Status:     monitorModel.AlertStatusOpen,
		OpenedAt:   now,
		LastSeenAt: now,
	}
	m.alerts[alert.ID] = alert
	m.open[key] = append(m.open[key], alert)

	m.appendEventLocked(monitorModel.AlertEvent{
		Type:       monitorModel.AlertEventOpened,
		AlertID:    alert.ID,
		MetricName: alert.MetricName,
		Severity:   alert.Severity,
		Message:    alert.Message,
		Timestamp:  now,
	})

	logger.LogBusinessOperation("alert_opened", 0, "", "", "", "success",
		alert.Message, map[string]interface{}{
			"alert_id": alert.ID,
			"metric":   alert.MetricName,
			"severity": string(alert.Severity),
			"domain":   string(alert.Domain),
		})
}

// clear 指标回到normal，解决该指标所有未解决告警
func (m *AlertManager) clear(metric monitorModel.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, severity := range []monitorModel.Severity{monitorModel.SeverityWarning, monitorModel.SeverityCritical} {
		key := monitorModel.DedupKey{MetricName: metric.Name, Severity: severity}
		// 先拷贝再解决，resolveLocked会原地压缩打开索引
		openList := append([]*monitorModel.Alert(nil), m.open[key]...)
		for _, alert := range openList {
			m.resolveLocked(alert, fmt.Sprintf("metric recovered: %s=%.4g", metric.Name, metric.Value), now)
		}
	}
}

// repairDuplicates 检查并修复同一去重键下多条打开告警的不变量破坏
// 保留最早打开的一条，其余以"duplicate-detected"解决并按bug级别记录
func (m *AlertManager) repairDuplicates(metricName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, severity := range []monitorModel.Severity{monitorModel.SeverityWarning, monitorModel.SeverityCritical} {
		key := monitorModel.DedupKey{MetricName: metricName, Severity: severity}
		// 先拷贝再处理，resolveLocked会原地压缩打开索引
		openList := append([]*monitorModel.Alert(nil), m.open[key]...)
		if len(openList) <= 1 {
			continue
		}

		// 找出最早打开的告警
		earliest := openList[0]
		for _, a := range openList[1:] {
			if a.OpenedAt.Before(earliest.OpenedAt) {
				earliest = a
			}
		}

		logger.LogError(
			monitorModel.ErrDuplicateOpenAlert,
			"", 0, "", "service.monitor.alert.repairDuplicates", "",
			map[string]interface{}{
				"operation": "repair_duplicates",
				"func_name": "service.monitor.alert.repairDuplicates",
				"dedup_key": key.String(),
				"count":     len(openList),
			},
		)

		for _, a := range openList {
			if a.ID != earliest.ID {
				m.resolveLocked(a, "duplicate-detected", now)
			}
		}
	}
}

// resolveLocked 解决单条告警并发出事件，调用方必须持有m.mu
func (m *AlertManager) resolveLocked(alert *monitorModel.Alert, note string, now time.Time) {
	if !alert.IsActive() {
		return
	}

	resolvedAt := now
	alert.Status = monitorModel.AlertStatusResolved
	alert.ResolvedAt = &resolvedAt
	alert.ResolutionNote = note

	// 从打开索引中摘除
	key := alert.Key()
	remaining := m.open[key][:0]
	for _, a := range m.open[key] {
		if a.ID != alert.ID {
			remaining = append(remaining, a)
		}
	}
	if len(remaining) == 0 {
		delete(m.open, key)
	} else {
		m.open[key] = remaining
	}

	m.appendEventLocked(monitorModel.AlertEvent{
		Type:       monitorModel.AlertEventResolved,
		AlertID:    alert.ID,
		MetricName: alert.MetricName,
		Severity:   alert.Severity,
		Message:    alert.Message,
		Note:       note,
		Timestamp:  now,
	})

	logger.LogSystemEvent("alert_manager", "alert_resolved",
		fmt.Sprintf("alert %s resolved: %s", alert.ID, note), logrus.InfoLevel,
		map[string]interface{}{
			"alert_id": alert.ID,
			"metric":   alert.MetricName,
			"severity": string(alert.Severity),
			"note":     note,
		})
}

// appendEventLocked 追加事件并裁剪到容量上限，调用方必须持有m.mu
func (m *AlertManager) appendEventLocked(event monitorModel.AlertEvent) {
	m.events = append(m.events, event)
	if len(m.events) > m.max {
		m.events = m.events[len(m.events)-m.max:]
	}
}

// firstOpenLocked 返回指定去重键下最早的打开告警，调用方必须持有m.mu
func (m *AlertManager) firstOpenLocked(key monitorModel.DedupKey) *monitorModel.Alert {
	openList := m.open[key]
	if len(openList) == 0 {
		return nil
	}
	return openList[0]
}

// otherSeverityOpenLocked 返回同指标另一级别的打开告警，调用方必须持有m.mu
func (m *AlertManager) otherSeverityOpenLocked(metricName string, severity monitorModel.Severity) *monitorModel.Alert {
	other := monitorModel.SeverityWarning
	if severity == monitorModel.SeverityWarning {
		other = monitorModel.SeverityCritical
	}
	return m.firstOpenLocked(monitorModel.DedupKey{MetricName: metricName, Severity: other})
}

// Acknowledge 确认告警 open -> acknowledged
// 幂等: 已确认的告警重复确认不报错也不产生新状态变更
func (m *AlertManager) Acknowledge(alertID string) (*monitorModel.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, monitorModel.ErrAlertNotFound
	}

	switch alert.Status {
	case monitorModel.AlertStatusAcknowledged:
		// 幂等处理
		copied := *alert
		return &copied, nil
	case monitorModel.AlertStatusResolved:
		return nil, monitorModel.ErrInvalidAlertState
	}

	now := time.Now()
	alert.Status = monitorModel.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now

	logger.LogBusinessOperation("alert_acknowledged", 0, "", "", "", "success",
		fmt.Sprintf("alert %s acknowledged", alertID), map[string]interface{}{
			"alert_id": alertID,
			"metric":   alert.MetricName,
		})

	copied := *alert
	return &copied, nil
}

// Resolve 手动解决告警，仪表盘协作方调用
// 已解决的告警重复解决按幂等处理
func (m *AlertManager) Resolve(alertID, note string) (*monitorModel.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, monitorModel.ErrAlertNotFound
	}

	if alert.Status == monitorModel.AlertStatusResolved {
		copied := *alert
		return &copied, nil
	}

	if note == "" {
		note = "manually resolved"
	}
	m.resolveLocked(alert, note, time.Now())

	copied := *alert
	return &copied, nil
}

// List 查询告警列表，status为空返回全部
// 按打开时间排序，保证多次查询返回稳定顺序
func (m *AlertManager) List(status monitorModel.AlertStatus) []monitorModel.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]monitorModel.Alert, 0, len(m.alerts))
	for _, alert := range m.alerts {
		if status != "" && alert.Status != status {
			continue
		}
		result = append(result, *alert)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OpenedAt.Equal(result[j].OpenedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].OpenedAt.Before(result[j].OpenedAt)
	})
	return result
}

// Get 按ID查询单条告警
func (m *AlertManager) Get(alertID string) (*monitorModel.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return nil, monitorModel.ErrAlertNotFound
	}
	copied := *alert
	return &copied, nil
}

// History 返回最近的告警事件，最新的在前
func (m *AlertManager) History(limit int) []monitorModel.AlertEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}

	result := make([]monitorModel.AlertEvent, 0, limit)
	for i := len(m.events) - 1; i >= len(m.events)-limit; i-- {
		result = append(result, m.events[i])
	}
	return result
}
