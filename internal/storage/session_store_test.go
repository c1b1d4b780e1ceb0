package storage

import (
	"context"
	"testing"
	"time"

	"resume-profiler/internal/config"
	"resume-profiler/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Minute)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	p := types.NewProfile()
	p.Name = "Jane"
	sess := types.NewSession("s1", p, types.CreationUpload)
	sess.HiddenSections = types.NewHiddenSections("skills-section")
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Profile.Name)
	assert.True(t, got.HiddenSections.Hides(types.SectionSkills))
	assert.Equal(t, types.CreationUpload, got.CreationMethod)
	assert.Equal(t, types.DefaultDesign, got.Design)

	got.Profile.Name = "changed"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Profile.Name, "返回值应为副本")

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(30 * time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, types.NewSession("s1", nil, types.CreationScratch)))
	now = now.Add(29 * time.Minute)
	_, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	// 再次写入刷新过期时间
	sess, _ := store.Get(ctx, "s1")
	require.NoError(t, store.Save(ctx, sess))
	now = now.Add(29 * time.Minute)
	_, err = store.Get(ctx, "s1")
	require.NoError(t, err, "写入应刷新TTL")

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStoreRejectsEmptyID(t *testing.T) {
	store := NewMemorySessionStore(0)
	assert.Error(t, store.Save(context.Background(), nil))
	assert.Error(t, store.Save(context.Background(), types.NewSession("", nil, types.CreationUpload)))
}

func TestRedisSessionKey(t *testing.T) {
	store := NewRedisSessionStore(&Redis{}, 0)
	assert.Equal(t, "app:profile:session:abc-123", store.SessionKey("abc-123"))
}

func TestNewStorageMemoryBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.Backend = "memory"
	cfg.Session.TTL = "5m"

	s, err := NewStorage(cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.Redis)
	_, ok := s.Sessions.(*MemorySessionStore)
	assert.True(t, ok)
}
