package constants

// Redis Key 命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有 Redis Key 的统一应用前缀
	AppPrefix = "app"

	// ProfileModulePrefix 简历档案模块
	ProfileModulePrefix = "profile"

	// EntitySession 会话实体
	EntitySession = "session"

	// KeyProfileSession 会话记录 (STRING, JSON)
	// 格式: app:profile:session:{sessionID}
	KeyProfileSession = AppPrefix + ":" + ProfileModulePrefix + ":" + EntitySession + ":%s"
)
