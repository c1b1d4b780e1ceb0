package agent

import (
	"errors"
	"strings"
	"sync"
)

// DefaultRotateEvery 每个密钥连续使用多少次后切换到下一个
const DefaultRotateEvery = 50

// ErrNoAPIKeys 没有可用的 API 密钥
var ErrNoAPIKeys = errors.New("未配置任何 API 密钥")

// KeyRotator 在多个 API 密钥之间轮换，每个密钥使用 rotateEvery 次后切换，循环往复
type KeyRotator struct {
	mu          sync.Mutex
	keys        []string
	rotateEvery int
	index       int
	used        int
}

// NewKeyRotator 创建轮换器，空白密钥会被忽略
func NewKeyRotator(keys []string, rotateEvery int) (*KeyRotator, error) {
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	if len(clean) == 0 {
		return nil, ErrNoAPIKeys
	}
	if rotateEvery <= 0 {
		rotateEvery = DefaultRotateEvery
	}
	return &KeyRotator{keys: clean, rotateEvery: rotateEvery}, nil
}

// Next 返回本次调用应使用的密钥及其序号
func (r *KeyRotator) Next() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.used >= r.rotateEvery {
		r.index = (r.index + 1) % len(r.keys)
		r.used = 0
	}
	r.used++
	return r.keys[r.index], r.index
}

// Len 密钥数量
func (r *KeyRotator) Len() int {
	return len(r.keys)
}
