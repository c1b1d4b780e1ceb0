package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"resume-profiler/internal/config"
	"resume-profiler/internal/storage"
	"resume-profiler/pkg/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfigFromFileOnly(writeSample(t))
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Server.UploadDir = filepath.Join(dir, "uploads")
	cfg.Server.OutputDir = filepath.Join(dir, "output")
	return cfg
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.CreateSampleConfig(path))
	return path
}

func TestNewModelsProviders(t *testing.T) {
	t.Run("qwen", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.LLMProvider = "qwen"
		cfg.Aliyun.APIKey = "sk-test"
		m, err := NewModels(cfg)
		require.NoError(t, err)
		defer m.Close()
		assert.NotNil(t, m.Synthesis)
		assert.NotNil(t, m.Review)
	})

	t.Run("gemini缺少密钥", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.LLMProvider = "gemini"
		cfg.Gemini.APIKeys = nil
		_, err := NewModels(cfg)
		assert.ErrorIs(t, err, agent.ErrNoAPIKeys)
	})

	t.Run("未知提供方", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.LLMProvider = "openai"
		_, err := NewModels(cfg)
		assert.Error(t, err)
	})
}

func TestNewProfileService(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "qwen"
	cfg.Aliyun.APIKey = "sk-test"
	cfg.Server.MaxUploadMB = 0

	m, err := NewModels(cfg)
	require.NoError(t, err)
	defer m.Close()

	svc, err := NewProfileService(context.Background(), cfg, m, storage.NewMemorySessionStore(0))
	require.NoError(t, err)
	assert.NotNil(t, svc)

	page, err := svc.SetDesign(context.Background(), "missing", "d1")
	assert.Empty(t, page)
	assert.Error(t, err, "没有会话时无法渲染")
}
