/*
*
  - 数据库迁移工具
  - @author: sun977
  - @date: 2025.11.16
  - @description: 平台只读表的模型迁移和演示数据初始化工具
  - @usage: go run main.go -env=test -seed=true -drop=true
    -drop
    是否先删除表（危险操作）
    -env string
    环境标识 (test, dev, prod) (default "test")
    -seed
    是否填充演示数据 (default true)

示例:
main.exe -env=test -seed=true    # 测试环境迁移并填充演示数据
main.exe -env=prod -seed=false   # 生产环境仅迁移表结构
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"neowatch/internal/config"
	"neowatch/internal/model/platform"
	"neowatch/internal/pkg/database"
	"neowatch/internal/pkg/logger"
)

// MigrateOptions 迁移选项配置
type MigrateOptions struct {
	Environment string // 环境标识: test, dev, prod
	SeedData    bool   // 是否填充演示数据
	DropFirst   bool   // 是否先删除表（危险操作）
}

// DataSeeder 演示数据填充器
// 为各监控领域生成可采集的平台数据
type DataSeeder struct {
	db  *gorm.DB
	env string
	log *logger.LoggerManager
}

func main() {
	// 解析命令行参数
	opts := parseFlags()

	// 加载配置
	cfg, err := config.LoadConfig("", opts.Environment)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 初始化日志管理器
	logManager, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}

	logManager.GetLogger().WithFields(logrus.Fields{
		"path":        "cmd/migrate/main.go",
		"operation":   "database_migration",
		"func_name":   "main",
		"environment": opts.Environment,
		"seed_data":   opts.SeedData,
		"drop_first":  opts.DropFirst,
	}).Info("开始数据库迁移")

	// 初始化数据库连接
	db, err := database.NewMySQLConnection(&cfg.Database.MySQL)
	if err != nil {
		logManager.GetLogger().WithFields(logrus.Fields{
			"path":      "cmd/migrate/main.go",
			"operation": "database_connection",
			"func_name": "main",
			"error":     err.Error(),
		}).Fatal("数据库连接失败")
	}

	// 执行迁移
	if err := performMigration(db, opts, logManager); err != nil {
		logManager.GetLogger().WithFields(logrus.Fields{
			"path":      "cmd/migrate/main.go",
			"operation": "database_migration",
			"func_name": "main",
			"error":     err.Error(),
		}).Fatal("数据库迁移失败")
	}

	logManager.GetLogger().Info("数据库迁移完成")
}

// parseFlags 解析命令行参数
func parseFlags() *MigrateOptions {
	opts := &MigrateOptions{}

	flag.StringVar(&opts.Environment, "env", "test", "环境标识 (test, dev, prod)")
	flag.BoolVar(&opts.SeedData, "seed", true, "是否填充演示数据")
	flag.BoolVar(&opts.DropFirst, "drop", false, "是否先删除表（危险操作）")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "neowatch 数据库迁移工具\n\n")
		fmt.Fprintf(os.Stderr, "用法: %s [选项]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "选项:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n示例:\n")
		fmt.Fprintf(os.Stderr, "  %s -env=test -seed=true    # 测试环境迁移并填充演示数据\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -env=prod -seed=false   # 生产环境仅迁移表结构\n", os.Args[0])
	}

	flag.Parse()
	return opts
}

// migrationModels 全部平台只读表模型
func migrationModels() []interface{} {
	return []interface{}{
		&platform.Resident{},
		&platform.SecurityEvent{},
		&platform.MaintenanceRequest{},
		&platform.Payment{},
		&platform.Expense{},
	}
}

// performMigration 执行数据库迁移
func performMigration(db *gorm.DB, opts *MigrateOptions, logManager *logger.LoggerManager) error {
	// 1. 删除表（如果指定）
	if opts.DropFirst {
		if err := dropTables(db, logManager); err != nil {
			return fmt.Errorf("删除表失败: %w", err)
		}
	}

	// 2. 执行模型迁移
	if err := migrateModels(db, logManager); err != nil {
		return fmt.Errorf("模型迁移失败: %w", err)
	}

	// 3. 填充演示数据（如果指定）
	if opts.SeedData {
		seeder := &DataSeeder{db: db, env: opts.Environment, log: logManager}
		if err := seeder.SeedAll(); err != nil {
			return fmt.Errorf("数据填充失败: %w", err)
		}
	}

	return nil
}

// dropTables 删除所有表
// 危险操作，仅用于开发环境重置
func dropTables(db *gorm.DB, logManager *logger.LoggerManager) error {
	logManager.GetLogger().Warn("开始删除数据库表")

	for _, model := range migrationModels() {
		if err := db.Migrator().DropTable(model); err != nil {
			logManager.GetLogger().WithFields(logrus.Fields{
				"path":      "cmd/migrate/main.go",
				"operation": "drop_table",
				"func_name": "dropTables",
				"model":     fmt.Sprintf("%T", model),
				"error":     err.Error(),
			}).Error("删除表失败")
		}
	}

	return nil
}

// migrateModels 执行模型迁移
func migrateModels(db *gorm.DB, logManager *logger.LoggerManager) error {
	logManager.GetLogger().Info("开始执行模型迁移...")

	if err := db.AutoMigrate(migrationModels()...); err != nil {
		return err
	}

	logManager.GetLogger().Info("模型迁移完成")
	return nil
}

// SeedAll 填充全部演示数据
// 生产环境拒绝执行
func (s *DataSeeder) SeedAll() error {
	if s.env == "prod" || s.env == "production" {
		return fmt.Errorf("生产环境禁止填充演示数据")
	}

	s.log.GetLogger().Info("开始填充演示数据...")

	if err := s.seedResidents(); err != nil {
		return fmt.Errorf("住户数据填充失败: %w", err)
	}
	if err := s.seedSecurityEvents(); err != nil {
		return fmt.Errorf("安全事件数据填充失败: %w", err)
	}
	if err := s.seedMaintenanceRequests(); err != nil {
		return fmt.Errorf("维修工单数据填充失败: %w", err)
	}
	if err := s.seedFinance(); err != nil {
		return fmt.Errorf("财务数据填充失败: %w", err)
	}

	s.log.GetLogger().Info("演示数据填充完成")
	return nil
}

// seedResidents 填充住户，部分近24小时登录过(活跃)，部分长期未登录
func (s *DataSeeder) seedResidents() error {
	now := time.Now()
	residents := make([]platform.Resident, 0, 60)
	for i := 1; i <= 60; i++ {
		var lastLogin *time.Time
		if i%3 != 0 {
			var t time.Time
			// 每组留几个最近1小时内登录的,供登录频率指标观测
			if i%6 == 1 {
				t = now.Add(-time.Duration(rand.Intn(50)) * time.Minute)
			} else {
				t = now.Add(-time.Duration(1+rand.Intn(19)) * time.Hour)
			}
			lastLogin = &t
		} else {
			t := now.Add(-time.Duration(48+rand.Intn(240)) * time.Hour)
			lastLogin = &t
		}
		residents = append(residents, platform.Resident{
			Username:    fmt.Sprintf("resident_%03d", i),
			Email:       fmt.Sprintf("resident_%03d@example.com", i),
			Phone:       fmt.Sprintf("138%08d", i),
			UnitNumber:  fmt.Sprintf("%d-%02d", i/10+1, i%10+1),
			Status:      1,
			LastLoginAt: lastLogin,
		})
	}
	return s.db.CreateInBatches(residents, 20).Error
}

// seedSecurityEvents 填充近1小时内的安全事件，含登录失败与高危事件
func (s *DataSeeder) seedSecurityEvents() error {
	now := time.Now()
	events := make([]platform.SecurityEvent, 0, 20)
	for i := 0; i < 12; i++ {
		events = append(events, platform.SecurityEvent{
			EventType:   platform.SecurityEventFailedLogin,
			Severity:    platform.SecuritySeverityLow,
			SourceIP:    fmt.Sprintf("192.168.1.%d", 10+i),
			ResidentID:  uint64(rand.Intn(60) + 1),
			Description: "密码错误次数过多",
		})
	}
	for i := 0; i < 3; i++ {
		events = append(events, platform.SecurityEvent{
			EventType:   platform.SecurityEventSuspiciousActivity,
			Severity:    platform.SecuritySeverityHigh,
			SourceIP:    fmt.Sprintf("10.0.0.%d", 20+i),
			Description: "短时间内异常高频访问",
		})
	}
	for i := range events {
		events[i].CreatedAt = now.Add(-time.Duration(rand.Intn(50)) * time.Minute)
	}
	return s.db.CreateInBatches(events, 20).Error
}

// seedMaintenanceRequests 填充维修工单，覆盖各状态与优先级
func (s *DataSeeder) seedMaintenanceRequests() error {
	now := time.Now()
	requests := make([]platform.MaintenanceRequest, 0, 30)

	// 待处理工单，其中少量高优先级
	for i := 0; i < 12; i++ {
		priority := platform.MaintenancePriorityMedium
		if i < 3 {
			priority = platform.MaintenancePriorityUrgent
		}
		requests = append(requests, platform.MaintenanceRequest{
			ResidentID:  uint64(rand.Intn(60) + 1),
			Title:       fmt.Sprintf("水管漏水报修-%d", i+1),
			Description: "卫生间水管接口处渗水",
			Status:      platform.MaintenanceStatusPending,
			Priority:    priority,
		})
	}

	// 已完成工单，带响应时间，用于平均响应时长统计
	for i := 0; i < 15; i++ {
		created := now.Add(-time.Duration(rand.Intn(25)+1) * 24 * time.Hour)
		responded := created.Add(time.Duration(rand.Intn(30)+2) * time.Hour)
		completed := responded.Add(time.Duration(rand.Intn(48)+1) * time.Hour)
		req := platform.MaintenanceRequest{
			ResidentID:  uint64(rand.Intn(60) + 1),
			Title:       fmt.Sprintf("电梯故障报修-%d", i+1),
			Description: "电梯按键失灵",
			Status:      platform.MaintenanceStatusCompleted,
			Priority:    platform.MaintenancePriorityHigh,
			RespondedAt: &responded,
			CompletedAt: &completed,
		}
		req.CreatedAt = created
		requests = append(requests, req)
	}

	return s.db.CreateInBatches(requests, 20).Error
}

// seedFinance 填充缴费与支出记录
func (s *DataSeeder) seedFinance() error {
	now := time.Now()

	payments := make([]platform.Payment, 0, 60)
	for i := 0; i < 60; i++ {
		due := now.Add(-time.Duration(rand.Intn(80)+1) * 24 * time.Hour)
		p := platform.Payment{
			ResidentID: uint64(i%60 + 1),
			Amount:     float64(200 + rand.Intn(800)),
			DueDate:    due,
		}
		if i%5 == 0 {
			p.Status = platform.PaymentStatusOverdue
		} else {
			paid := due.Add(-time.Duration(rand.Intn(72)) * time.Hour)
			p.Status = platform.PaymentStatusPaid
			p.PaidAt = &paid
		}
		payments = append(payments, p)
	}
	if err := s.db.CreateInBatches(payments, 20).Error; err != nil {
		return err
	}

	// 近60天支出，后30天略高于前30天，便于观察支出环比
	expenses := make([]platform.Expense, 0, 40)
	categories := []string{"绿化养护", "电梯维保", "公共水电", "保洁服务"}
	for i := 0; i < 40; i++ {
		daysAgo := rand.Intn(60)
		amount := float64(500 + rand.Intn(2000))
		if daysAgo < 30 {
			amount *= 1.2
		}
		expenses = append(expenses, platform.Expense{
			Category:   categories[i%len(categories)],
			Amount:     amount,
			IncurredAt: now.Add(-time.Duration(daysAgo) * 24 * time.Hour),
			Remark:     "演示数据",
		})
	}
	return s.db.CreateInBatches(expenses, 20).Error
}
