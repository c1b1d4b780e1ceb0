package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 重试设置
	MaxRetries        int `yaml:"max_retries"`          // 最大重试次数
	MinRetryBackoffMS int `yaml:"min_retry_backoff_ms"` // 最小重试间隔(毫秒)
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"` // 最大重试间隔(毫秒)
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`  // 连接最大生命周期(分钟)
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"` // 空闲连接最大生命周期(分钟)
}

// Config 应用程序配置
type Config struct {
	// LLM 提供方: gemini 或 qwen
	LLMProvider string `yaml:"llm_provider"`

	Gemini GeminiConfig `yaml:"gemini"`

	Aliyun struct {
		APIKey     string            `yaml:"api_key"`
		APIURL     string            `yaml:"api_url"`
		Model      string            `yaml:"model"`
		TaskModels map[string]string `yaml:"task_models"` // 任务专用模型
	} `yaml:"aliyun"`

	// 结构化抽取配置
	Synthesis SynthesisConfig `yaml:"synthesis"`

	Redis RedisConfig `yaml:"redis"`

	Session SessionConfig `yaml:"session"`

	Server ServerConfig `yaml:"server"`

	Render RenderConfig `yaml:"render"`

	Logger LoggerConfig `yaml:"logger"`

	Tracing TracingConfig `yaml:"tracing"`

	// 模型QPM限制
	ModelQPMLimits map[string]int `yaml:"model_qpm_limits"`
}

// GeminiConfig Gemini 配置，多个 key 轮换使用
type GeminiConfig struct {
	APIKeys     []string `yaml:"api_keys"`
	Model       string   `yaml:"model"`
	Temperature float32  `yaml:"temperature"`
	RotateEvery int      `yaml:"rotate_every"` // 每个 key 连续使用的调用次数
}

// SynthesisConfig 定义LLM抽取的配置
type SynthesisConfig struct {
	Timeout          string `yaml:"timeout"`            // 单次调用超时，例如 "60s"
	MaxRetries       int    `yaml:"max_retries"`        // 最大重试次数
	RetryWaitSeconds int    `yaml:"retry_wait_seconds"` // 重试等待时间(秒)
	QPM              int    `yaml:"qpm"`                // 每分钟请求数限制
	BulletRewrite    bool   `yaml:"bullet_rewrite"`     // 是否对长文本做二次要点化
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	Backend string `yaml:"backend"` // redis 或 memory
	TTL     string `yaml:"ttl"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address     string `yaml:"address"`       // 例如 ":8080" or "0.0.0.0:8080"
	UploadDir   string `yaml:"upload_dir"`    // 上传文件临时目录
	OutputDir   string `yaml:"output_dir"`    // 导出文件临时目录
	MaxUploadMB int    `yaml:"max_upload_mb"` // 上传大小上限
}

// RenderConfig 文档渲染配置
type RenderConfig struct {
	ChromePath    string `yaml:"chrome_path"`
	LaunchTimeout string `yaml:"launch_timeout"`
	SettleTimeout string `yaml:"settle_timeout"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// TracingConfig OpenTelemetry 导出配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoadConfig 从文件加载配置，找不到文件时使用默认配置；环境变量优先
func LoadConfig(configPath string) (*Config, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()

	if configPath == "" {
		configPath = findConfigFile()
	}

	config := createDefaultConfig()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不尝试从环境变量覆盖
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := createDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return config, nil
}

// findConfigFile 在常见位置查找配置文件，未找到返回空串
func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		"../config.yaml",
		"../../config.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".resume-profiler", "config.yaml"))
	}
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths,
			filepath.Join(execDir, "config.yaml"),
			filepath.Join(execDir, "..", "config.yaml"))
	}

	for _, path := range searchPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(config *Config) {
	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		config.Gemini.APIKeys = splitList(keys)
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKeys = []string{key}
	}
	if envKey := os.Getenv("ALIYUN_API_KEY"); envKey != "" {
		config.Aliyun.APIKey = envKey
	}
	if envURL := os.Getenv("ALIYUN_API_URL"); envURL != "" {
		config.Aliyun.APIURL = envURL
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLMProvider = provider
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if path := os.Getenv("CHROME_PATH"); path != "" {
		config.Render.ChromePath = path
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Address = ":" + strings.TrimPrefix(port, ":")
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		config.Tracing.Endpoint = endpoint
		config.Tracing.Enabled = true
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// 创建一个默认配置
func createDefaultConfig() *Config {
	config := &Config{}
	config.LLMProvider = "gemini"

	config.Gemini.Model = "gemini-1.5-flash"
	config.Gemini.Temperature = 0.2
	config.Gemini.RotateEvery = 50

	config.Aliyun.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	config.Aliyun.Model = "qwen-turbo"

	config.Synthesis.Timeout = "60s"
	config.Synthesis.MaxRetries = 3
	config.Synthesis.RetryWaitSeconds = 2
	config.Synthesis.QPM = 60
	config.Synthesis.BulletRewrite = true

	// Redis默认配置
	config.Redis.Address = "localhost:6379"
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.MaxRetries = 3
	config.Redis.MinRetryBackoffMS = 8
	config.Redis.MaxRetryBackoffMS = 512
	config.Redis.ConnMaxLifetimeMinutes = 60
	config.Redis.ConnMaxIdleTimeMinutes = 30

	config.Session.Backend = "redis"
	config.Session.TTL = "30m"

	config.Server.Address = ":8080"
	config.Server.UploadDir = filepath.Join(os.TempDir(), "resume-profiler", "uploads")
	config.Server.OutputDir = filepath.Join(os.TempDir(), "resume-profiler", "output")
	config.Server.MaxUploadMB = 16

	config.Render.LaunchTimeout = "120s"
	config.Render.SettleTimeout = "120s"

	// 日志默认配置
	config.Logger.Level = "info"
	config.Logger.Format = "pretty" // 开发环境默认使用美化输出
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	config.Tracing.ServiceName = "resume-profiler"
	config.Tracing.SampleRatio = 1.0

	// 默认的模型QPM限制
	config.ModelQPMLimits = map[string]int{
		"gemini-1.5-flash": 15,
		"gemini-1.5-pro":   2,
		"qwen-turbo":       1200,
		"qwen-plus":        15000,
		"qwen-max":         1200,
	}
	return config
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// ModelName 当前提供方使用的模型
func (c *Config) ModelName() string {
	if c.LLMProvider == "qwen" {
		return c.GetModelForTask("profile_synthesis")
	}
	return c.Gemini.Model
}

// GetModelForTask 根据任务名称获取合适的模型
// 如果任务专用模型存在则返回专用模型，否则返回默认模型
func (c *Config) GetModelForTask(taskName string) string {
	if c.Aliyun.TaskModels != nil {
		if model, ok := c.Aliyun.TaskModels[taskName]; ok && model != "" {
			return model
		}
	}
	return c.Aliyun.Model
}

// QPMFor 返回模型的QPM限制，未配置时使用抽取配置
func (c *Config) QPMFor(model string) int {
	if qpm, ok := c.ModelQPMLimits[model]; ok && qpm > 0 {
		return qpm
	}
	return c.Synthesis.QPM
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
