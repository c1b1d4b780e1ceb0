package storage

import (
	"resume-profiler/internal/config"
	"resume-profiler/internal/constants"
	"resume-profiler/internal/logger"
)

// Storage 存储管理器，持有会话存储及其底层连接
type Storage struct {
	Sessions SessionStore

	// 键值存储，使用内存后端时为 nil
	Redis *Redis
}

// NewStorage 按配置创建会话存储；Redis 连接失败时退回内存存储
func NewStorage(cfg *config.Config) (*Storage, error) {
	ttl := config.GetDuration(cfg.Session.TTL, constants.DefaultSessionTTL)
	log := logger.Op("storage.init")

	if cfg.Session.Backend == "memory" || cfg.Redis.Address == "" {
		log.Info().Dur("ttl", ttl).Msg("使用内存会话存储")
		return &Storage{Sessions: NewMemorySessionStore(ttl)}, nil
	}

	r, err := NewRedisAdapter(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("初始化Redis失败，退回内存会话存储")
		return &Storage{Sessions: NewMemorySessionStore(ttl)}, nil
	}
	log.Info().Str("address", cfg.Redis.Address).Dur("ttl", ttl).Msg("Redis会话存储初始化成功")
	return &Storage{Sessions: NewRedisSessionStore(r, ttl), Redis: r}, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Op("storage.close").Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
