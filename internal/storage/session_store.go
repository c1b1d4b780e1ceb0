package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-profiler/internal/constants"
	"resume-profiler/internal/types"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// SessionStore 会话范围内单条记录的存取，写入总是整条覆盖并刷新 TTL
type SessionStore interface {
	Get(ctx context.Context, id string) (*types.Session, error)
	Save(ctx context.Context, s *types.Session) error
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore 以 JSON 字符串存储会话
type RedisSessionStore struct {
	redis *Redis
	ttl   time.Duration
}

// NewRedisSessionStore 创建 Redis 会话存储
func NewRedisSessionStore(r *Redis, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &RedisSessionStore{redis: r, ttl: ttl}
}

// SessionKey 会话记录的键
func (s *RedisSessionStore) SessionKey(id string) string {
	return s.redis.FormatKey(constants.KeyProfileSession, id)
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	val, err := s.redis.Get(ctx, s.SessionKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}
	var sess types.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("解析会话记录失败: %w", err)
	}
	if sess.Profile == nil {
		sess.Profile = types.NewProfile()
	}
	sess.Profile.EnsureDefaults()
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *types.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("会话ID不能为空")
	}
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := s.redis.Set(ctx, s.SessionKey(sess.ID), string(data), s.ttl); err != nil {
		return fmt.Errorf("写入会话失败: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.SessionKey(id)); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore 进程内会话存储，Redis 不可用时使用
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionStore 创建内存会话存储
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &MemorySessionStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

// 存储序列化后的副本，调用方修改返回值不会影响存储内容
func (m *MemorySessionStore) Get(_ context.Context, id string) (*types.Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var sess types.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, fmt.Errorf("解析会话记录失败: %w", err)
	}
	if sess.Profile == nil {
		sess.Profile = types.NewProfile()
	}
	return &sess, nil
}

func (m *MemorySessionStore) Save(_ context.Context, sess *types.Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("会话ID不能为空")
	}
	sess.UpdatedAt = m.now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sess.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	m.evictExpiredLocked()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len 未过期的会话数
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictExpiredLocked()
	return len(m.entries)
}

func (m *MemorySessionStore) evictExpiredLocked() {
	now := m.now()
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}
