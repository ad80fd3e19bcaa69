package config

import (
	"fmt"
	"time"
)

// Config 应用配置结构体 [这里的字段和配置文件中一级字段保持一致，否则会没有值]
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`     // 服务器配置
	Database DatabaseConfig `yaml:"database" mapstructure:"database"` // 数据库配置
	Log      LogConfig      `yaml:"log" mapstructure:"log"`           // 日志配置
	Security SecurityConfig `yaml:"security" mapstructure:"security"` // 安全配置
	Monitor  MonitorConfig  `yaml:"monitor" mapstructure:"monitor"`   // 监控引擎配置
	App      AppConfig      `yaml:"app" mapstructure:"app"`           // 应用配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`                         // 服务器主机地址
	Port           int           `yaml:"port" mapstructure:"port"`                         // 服务器端口
	Mode           string        `yaml:"mode" mapstructure:"mode"`                         // 运行模式: debug, release, test
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`         // 读取超时时间
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`       // 写入超时时间
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // 空闲超时时间
	MaxHeaderBytes int           `yaml:"max_header_bytes" mapstructure:"max_header_bytes"` // 最大请求头字节数
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MySQL MySQLConfig `yaml:"mysql" mapstructure:"mysql"` // MySQL配置
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"` // Redis配置
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`                             // 数据库主机
	Port            int           `yaml:"port" mapstructure:"port"`                             // 数据库端口
	Username        string        `yaml:"username" mapstructure:"username"`                     // 用户名
	Password        string        `yaml:"password" mapstructure:"password"`                     // 密码
	Database        string        `yaml:"database" mapstructure:"database"`                     // 数据库名
	Charset         string        `yaml:"charset" mapstructure:"charset"`                       // 字符集
	ParseTime       bool          `yaml:"parse_time" mapstructure:"parse_time"`                 // 是否解析时间
	Loc             string        `yaml:"loc" mapstructure:"loc"`                               // 时区
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`         // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`         // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`   // 连接最大生存时间
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"` // 连接最大空闲时间
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`                   // 日志级别
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`                     // Redis主机
	Port         int           `yaml:"port" mapstructure:"port"`                     // Redis端口
	Password     string        `yaml:"password" mapstructure:"password"`             // Redis密码
	Database     int           `yaml:"database" mapstructure:"database"`             // Redis数据库索引
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`           // 连接池大小
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"` // 最小空闲连接数
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`     // 连接超时
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`     // 读取超时
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`   // 写入超时
	PoolTimeout  time.Duration `yaml:"pool_timeout" mapstructure:"pool_timeout"`     // 连接池超时
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`     // 空闲超时
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式: json, text
	Output     string `yaml:"output" mapstructure:"output"`           // 输出方式: stdout, stderr, file
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩日志文件
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
	StackTrace bool   `yaml:"stack_trace" mapstructure:"stack_trace"` // 是否显示堆栈跟踪
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT     JWTConfig     `yaml:"jwt" mapstructure:"jwt"`         // JWT配置
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"` // 日志中间件配置
	CORS    CORSConfig    `yaml:"cors" mapstructure:"cors"`       // CORS配置
}

// JWTConfig JWT配置
// 告警确认/解决等写接口由仪表盘协作方携带JWT访问
type JWTConfig struct {
	Secret    string        `yaml:"secret" mapstructure:"secret"`       // JWT密钥
	Issuer    string        `yaml:"issuer" mapstructure:"issuer"`       // 签发者
	Expire    time.Duration `yaml:"expire" mapstructure:"expire"`       // 令牌过期时间
	Algorithm string        `yaml:"algorithm" mapstructure:"algorithm"` // 签名算法
}

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	EnableRequestLog     bool          `yaml:"enable_request_log" mapstructure:"enable_request_log"`         // 是否启用请求日志
	SlowRequestThreshold time.Duration `yaml:"slow_request_threshold" mapstructure:"slow_request_threshold"` // 慢请求阈值
	SkipPaths            []string      `yaml:"skip_paths" mapstructure:"skip_paths"`                         // 跳过日志记录的路径
}

// CORSConfig CORS配置
type CORSConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`                     // 是否启用CORS
	AllowAllOrigins  bool          `yaml:"allow_all_origins" mapstructure:"allow_all_origins"` // 是否允许所有源
	AllowOrigins     []string      `yaml:"allow_origins" mapstructure:"allow_origins"`         // 允许的源
	AllowMethods     []string      `yaml:"allow_methods" mapstructure:"allow_methods"`         // 允许的方法
	AllowHeaders     []string      `yaml:"allow_headers" mapstructure:"allow_headers"`         // 允许的请求头
	AllowCredentials bool          `yaml:"allow_credentials" mapstructure:"allow_credentials"` // 是否允许凭证
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age"`                     // 预检请求缓存时间
}

// MonitorConfig 监控引擎配置
// 各领域采集间隔、阈值定义、趋势窗口均在进程启动时加载，运行期不再变更
type MonitorConfig struct {
	Enabled     bool              `yaml:"enabled" mapstructure:"enabled"`           // 是否启用监控引擎
	StopTimeout time.Duration     `yaml:"stop_timeout" mapstructure:"stop_timeout"` // 停止时等待在途采集周期完成的最长时间
	Domains     DomainsConfig     `yaml:"domains" mapstructure:"domains"`           // 各领域采集配置
	Thresholds  []ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`     // 指标阈值定义
	Trend       TrendConfig       `yaml:"trend" mapstructure:"trend"`               // 趋势分析配置
	Gateway     GatewayConfig     `yaml:"gateway" mapstructure:"gateway"`           // 数据访问网关配置
	Alert       AlertConfig       `yaml:"alert" mapstructure:"alert"`               // 告警管理配置

	// MonthlyBudget 月度支出预算，预算使用率指标的分母，<=0表示未配置
	MonthlyBudget float64 `yaml:"monthly_budget" mapstructure:"monthly_budget"`
}

// DomainsConfig 各监控领域的采集配置
type DomainsConfig struct {
	Performance  DomainConfig `yaml:"performance" mapstructure:"performance"`     // 系统性能
	UserActivity DomainConfig `yaml:"user_activity" mapstructure:"user_activity"` // 用户活跃度
	Security     DomainConfig `yaml:"security" mapstructure:"security"`           // 安全事件
	Maintenance  DomainConfig `yaml:"maintenance" mapstructure:"maintenance"`     // 维修工单
	Financial    DomainConfig `yaml:"financial" mapstructure:"financial"`         // 财务健康
}

// DomainConfig 单个监控领域的采集配置
type DomainConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`   // 是否启用该领域采集
	Interval time.Duration `yaml:"interval" mapstructure:"interval"` // 采集周期间隔
}

// ThresholdConfig 指标阈值定义
// warning/critical 两级水位，hysteresis 为恢复迟滞边界，防止告警抖动
type ThresholdConfig struct {
	Metric     string  `yaml:"metric" mapstructure:"metric"`         // 指标名称
	Comparator string  `yaml:"comparator" mapstructure:"comparator"` // 比较方向: gt, gte, lt, lte
	Warning    float64 `yaml:"warning" mapstructure:"warning"`       // 警告水位
	Critical   float64 `yaml:"critical" mapstructure:"critical"`     // 严重水位
	Hysteresis float64 `yaml:"hysteresis" mapstructure:"hysteresis"` // 恢复迟滞边界
}

// TrendConfig 趋势分析配置
type TrendConfig struct {
	WindowSize   int     `yaml:"window_size" mapstructure:"window_size"`     // 滚动窗口容量(样本数)
	MinSamples   int     `yaml:"min_samples" mapstructure:"min_samples"`     // 产生有效预测所需最小样本数
	SlopeEpsilon float64 `yaml:"slope_epsilon" mapstructure:"slope_epsilon"` // 判定方向的斜率阈值
}

// GatewayConfig 数据访问网关配置
type GatewayConfig struct {
	QueryTimeout      time.Duration `yaml:"query_timeout" mapstructure:"query_timeout"`             // 单次读取的超时时间
	LatencySampleSize int           `yaml:"latency_sample_size" mapstructure:"latency_sample_size"` // 响应时间采样环的容量
}

// AlertConfig 告警管理配置
type AlertConfig struct {
	EventHistorySize int `yaml:"event_history_size" mapstructure:"event_history_size"` // 告警事件历史的最大保留条数
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 是否调试模式
	Timezone    string `yaml:"timezone" mapstructure:"timezone"`       // 时区
}

// GetAddress 获取服务器完整地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment 判断是否为开发环境
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction 判断是否为生产环境
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// IsTest 判断是否为测试环境
func (a *AppConfig) IsTest() bool {
	return a.Environment == "test"
}

// GetMySQLDSN 获取MySQL数据源名称
func (m *MySQLConfig) GetMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		m.Username, m.Password, m.Host, m.Port, m.Database, m.Charset, m.ParseTime, m.Loc)
}

// GetRedisAddress 获取Redis地址
func (r *RedisConfig) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
