package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testConfigContent 测试用完整配置
const testConfigContent = `
server:
  host: "localhost"
  port: 8080
  mode: "test"
  read_timeout: 30s
  write_timeout: 30s
  idle_timeout: 60s
  max_header_bytes: 1048576

database:
  mysql:
    host: "localhost"
    port: 3306
    username: "test_user"
    password: "test_password"
    database: "test_db"
    charset: "utf8mb4"
    parse_time: true
    loc: "Local"
    max_idle_conns: 10
    max_open_conns: 100
    conn_max_lifetime: 3600s
    conn_max_idle_time: 1800s
    log_level: "info"
  redis:
    host: "localhost"
    port: 6379
    password: ""
    database: 0
    pool_size: 10
    min_idle_conns: 5
    dial_timeout: 5s
    read_timeout: 3s
    write_timeout: 3s
    pool_timeout: 4s
    idle_timeout: 300s

log:
  level: "info"
  format: "json"
  output: "stdout"
  file_path: "logs/app.log"
  max_size: 100
  max_backups: 5
  max_age: 30
  compress: true
  caller: true
  stack_trace: true

security:
  jwt:
    secret: "test_jwt_secret_key_at_least_32_chars"
    issuer: "neowatch-test"
    expire: 24h
    algorithm: "HS256"
  logging:
    enable_request_log: true
    slow_request_threshold: 2s
    skip_paths: ["/api/v1/monitor/health"]
  cors:
    enabled: true
    allow_all_origins: true
    allow_methods: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
    allow_headers: ["*"]
    allow_credentials: true
    max_age: 12h

monitor:
  enabled: true
  stop_timeout: 30s
  domains:
    performance:
      enabled: true
      interval: 60s
    user_activity:
      enabled: true
      interval: 300s
    security:
      enabled: true
      interval: 60s
    maintenance:
      enabled: true
      interval: 600s
    financial:
      enabled: true
      interval: 3600s
  thresholds:
    - metric: "system_response_time_p95"
      comparator: "gt"
      warning: 1.0
      critical: 2.0
      hysteresis: 0.2
    - metric: "system_error_rate"
      comparator: "gt"
      warning: 0.02
      critical: 0.05
      hysteresis: 0.005
  trend:
    window_size: 50
    min_samples: 5
    slope_epsilon: 0.001
  gateway:
    query_timeout: 5s
    latency_sample_size: 200
  alert:
    event_history_size: 500

app:
  name: "NeoWatch Test"
  version: "1.0.0"
  environment: "test"
  debug: true
  timezone: "Asia/Shanghai"
`

// TestLoadConfig 测试配置加载功能
func TestLoadConfig(t *testing.T) {
	// 创建临时配置文件
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte(testConfigContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// 测试加载配置
	config, err := LoadConfig(tempDir, "test")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// 验证配置值
	if config.Server.Host != "localhost" {
		t.Errorf("Expected server host 'localhost', got '%s'", config.Server.Host)
	}

	if config.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", config.Server.Port)
	}

	if config.Database.MySQL.Database != "test_db" {
		t.Errorf("Expected database name 'test_db', got '%s'", config.Database.MySQL.Database)
	}

	if config.Security.JWT.Secret != "test_jwt_secret_key_at_least_32_chars" {
		t.Errorf("Expected JWT secret, got '%s'", config.Security.JWT.Secret)
	}

	if config.App.Environment != "test" {
		t.Errorf("Expected environment 'test', got '%s'", config.App.Environment)
	}

	// 验证监控引擎配置
	if !config.Monitor.Enabled {
		t.Error("Expected monitor to be enabled")
	}

	if config.Monitor.Domains.Performance.Interval != 60*time.Second {
		t.Errorf("Expected performance interval 60s, got %v", config.Monitor.Domains.Performance.Interval)
	}

	if config.Monitor.Domains.Financial.Interval != time.Hour {
		t.Errorf("Expected financial interval 1h, got %v", config.Monitor.Domains.Financial.Interval)
	}

	if len(config.Monitor.Thresholds) != 2 {
		t.Fatalf("Expected 2 thresholds, got %d", len(config.Monitor.Thresholds))
	}

	if config.Monitor.Thresholds[0].Metric != "system_response_time_p95" {
		t.Errorf("Expected threshold metric 'system_response_time_p95', got '%s'", config.Monitor.Thresholds[0].Metric)
	}

	if config.Monitor.Trend.WindowSize != 50 {
		t.Errorf("Expected trend window size 50, got %d", config.Monitor.Trend.WindowSize)
	}
}

// TestLoadConfigWithEnvVars 测试环境变量覆盖配置
func TestLoadConfigWithEnvVars(t *testing.T) {
	// 设置环境变量
	os.Setenv("NEOWATCH_SERVER_PORT", "9090")
	os.Setenv("NEOWATCH_MYSQL_HOST", "env_mysql_host")
	os.Setenv("NEOWATCH_JWT_SECRET", "env_jwt_secret_key_at_least_32_chars")
	defer func() {
		os.Unsetenv("NEOWATCH_SERVER_PORT")
		os.Unsetenv("NEOWATCH_MYSQL_HOST")
		os.Unsetenv("NEOWATCH_JWT_SECRET")
	}()

	// 创建临时配置文件
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte(testConfigContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// 测试加载配置
	config, err := LoadConfig(tempDir, "test")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// 验证环境变量覆盖了配置文件的值
	if config.Server.Port != 9090 {
		t.Errorf("Expected server port 9090 (from env), got %d", config.Server.Port)
	}

	if config.Database.MySQL.Host != "env_mysql_host" {
		t.Errorf("Expected mysql host 'env_mysql_host' (from env), got '%s'", config.Database.MySQL.Host)
	}

	if config.Security.JWT.Secret != "env_jwt_secret_key_at_least_32_chars" {
		t.Errorf("Expected JWT secret from env, got '%s'", config.Security.JWT.Secret)
	}
}

// baseValidConfig 构造一份通过验证的最小配置
func baseValidConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
			Mode: "debug",
		},
		Database: DatabaseConfig{
			MySQL: MySQLConfig{
				Host:     "localhost",
				Database: "test_db",
			},
			Redis: RedisConfig{
				Host: "localhost",
			},
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Secret: "test_jwt_secret_key_at_least_32_chars",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Monitor: MonitorConfig{
			Enabled:     true,
			StopTimeout: 30 * time.Second,
			Domains: DomainsConfig{
				Performance: DomainConfig{Enabled: true, Interval: time.Minute},
			},
			Thresholds: []ThresholdConfig{
				{Metric: "system_response_time_p95", Comparator: "gt", Warning: 1.0, Critical: 2.0, Hysteresis: 0.2},
			},
			Trend:   TrendConfig{WindowSize: 50, MinSamples: 5},
			Gateway: GatewayConfig{QueryTimeout: 5 * time.Second, LatencySampleSize: 200},
			Alert:   AlertConfig{EventHistorySize: 500},
		},
	}
}

// TestConfigValidation 测试配置验证
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "invalid port",
			mutate: func(c *Config) {
				c.Server.Port = -1
			},
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name: "short jwt secret",
			mutate: func(c *Config) {
				c.Security.JWT.Secret = "short" // 太短的密钥
			},
			expectError: true,
			errorMsg:    "jwt secret must be at least 32 characters long",
		},
		{
			name: "invalid threshold comparator",
			mutate: func(c *Config) {
				c.Monitor.Thresholds[0].Comparator = "eq"
			},
			expectError: true,
			errorMsg:    "invalid threshold comparator",
		},
		{
			name: "critical below warning for gt comparator",
			mutate: func(c *Config) {
				c.Monitor.Thresholds[0].Warning = 3.0
				c.Monitor.Thresholds[0].Critical = 2.0
			},
			expectError: true,
			errorMsg:    "critical must not be below warning",
		},
		{
			name: "duplicate threshold metric",
			mutate: func(c *Config) {
				c.Monitor.Thresholds = append(c.Monitor.Thresholds, c.Monitor.Thresholds[0])
			},
			expectError: true,
			errorMsg:    "duplicate threshold for metric",
		},
		{
			name: "non-positive domain interval",
			mutate: func(c *Config) {
				c.Monitor.Domains.Performance.Interval = 0
			},
			expectError: true,
			errorMsg:    "interval must be positive",
		},
		{
			name: "min_samples exceeds window_size",
			mutate: func(c *Config) {
				c.Monitor.Trend.MinSamples = 100
			},
			expectError: true,
			errorMsg:    "min_samples must not exceed window_size",
		},
		{
			name: "monitor disabled skips monitor validation",
			mutate: func(c *Config) {
				c.Monitor.Enabled = false
				c.Monitor.Thresholds[0].Comparator = "eq"
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := baseValidConfig()
			tt.mutate(config)
			err := validateConfig(config)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error message to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
			}
		})
	}
}

// TestApplyMonitorDefaults 测试监控配置缺省值填充
func TestApplyMonitorDefaults(t *testing.T) {
	config := &Config{}
	applyMonitorDefaults(config)

	if config.Monitor.Trend.WindowSize != defaultTrendWindowSize {
		t.Errorf("Expected default trend window size %d, got %d", defaultTrendWindowSize, config.Monitor.Trend.WindowSize)
	}

	if config.Monitor.Trend.MinSamples != defaultTrendMinSamples {
		t.Errorf("Expected default trend min samples %d, got %d", defaultTrendMinSamples, config.Monitor.Trend.MinSamples)
	}

	if config.Monitor.Gateway.QueryTimeout != defaultGatewayQueryTimeout {
		t.Errorf("Expected default gateway query timeout %v, got %v", defaultGatewayQueryTimeout, config.Monitor.Gateway.QueryTimeout)
	}

	if config.Monitor.Alert.EventHistorySize != defaultEventHistorySize {
		t.Errorf("Expected default event history size %d, got %d", defaultEventHistorySize, config.Monitor.Alert.EventHistorySize)
	}
}

// TestConfigHelperMethods 测试配置辅助方法
func TestConfigHelperMethods(t *testing.T) {
	config := &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		App: AppConfig{
			Environment: "development",
		},
		Database: DatabaseConfig{
			MySQL: MySQLConfig{
				Host:      "localhost",
				Port:      3306,
				Username:  "user",
				Password:  "pass",
				Database:  "test",
				Charset:   "utf8mb4",
				ParseTime: true,
				Loc:       "Local",
			},
			Redis: RedisConfig{
				Host: "localhost",
				Port: 6379,
			},
		},
	}

	// 测试服务器地址
	expectedAddr := "localhost:8080"
	if addr := config.Server.GetAddress(); addr != expectedAddr {
		t.Errorf("Expected address '%s', got '%s'", expectedAddr, addr)
	}

	// 测试环境判断
	if !config.App.IsDevelopment() {
		t.Error("Expected to be development environment")
	}

	if config.App.IsProduction() {
		t.Error("Expected not to be production environment")
	}

	// 测试MySQL DSN
	expectedDSN := "user:pass@tcp(localhost:3306)/test?charset=utf8mb4&parseTime=true&loc=Local"
	if dsn := config.Database.MySQL.GetMySQLDSN(); dsn != expectedDSN {
		t.Errorf("Expected DSN '%s', got '%s'", expectedDSN, dsn)
	}

	// 测试Redis地址
	expectedRedisAddr := "localhost:6379"
	if addr := config.Database.Redis.GetRedisAddress(); addr != expectedRedisAddr {
		t.Errorf("Expected Redis address '%s', got '%s'", expectedRedisAddr, addr)
	}
}
