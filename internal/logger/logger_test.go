package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpLoggerChaining(t *testing.T) {
	saved, level := Logger, zerolog.GlobalLevel()
	defer func() {
		Logger = saved
		zerolog.SetGlobalLevel(level)
	}()

	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &buf)

	Op("storage.close").Warn().Str("key", "v").Msg("关闭失败")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "日志应为单行 JSON")
	assert.Equal(t, "storage.close", entry["op"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "关闭失败", entry["message"])

	buf.Reset()
	l := Op("a")
	l.Info().Msg("x")
	Op("b").Info().Msg("y")
	assert.Contains(t, buf.String(), `"op":"a"`)
	assert.Contains(t, buf.String(), `"op":"b"`)
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	saved, level := Logger, zerolog.GlobalLevel()
	defer func() {
		Logger = saved
		zerolog.SetGlobalLevel(level)
	}()

	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info", Format: "json"}, &buf)

	Ctx(context.Background()).Info().Msg("global")
	assert.Contains(t, buf.String(), "global")

	buf.Reset()
	Ctx(WithSession(context.Background(), "s-1")).Info().Msg("scoped")
	assert.Contains(t, buf.String(), `"session_id":"s-1"`, "会话日志器应带 session_id")
}
