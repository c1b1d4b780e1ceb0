package constants

import "time"

const (
	// ServiceName 服务名，用于 tracer 与日志
	ServiceName = "resume-profiler"

	// DefaultSessionTTL 会话记录的默认有效期
	DefaultSessionTTL = 30 * time.Minute

	// DefaultLLMTimeout 单次 LLM 调用超时
	DefaultLLMTimeout = 60 * time.Second

	// DefaultBrowserTimeout 浏览器启动与页面就绪的默认超时
	DefaultBrowserTimeout = 120 * time.Second

	// MaxUploadSize 上传文件大小上限
	MaxUploadSize = 16 << 20

	// SessionHeader 与 SessionCookie 用于携带会话 ID
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
)
