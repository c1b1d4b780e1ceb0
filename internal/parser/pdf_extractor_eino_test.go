package parser

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor.parser, "PDF提取器内部的parser不应为nil")
	assert.Equal(t, 30*time.Second, extractor.timeout)

	custom, err := NewEinoPDFTextExtractor(ctx, WithEinoTimeout(time.Second), WithEinoTimeout(0))
	require.NoError(t, err)
	assert.Equal(t, time.Second, custom.timeout, "非正数超时应被忽略")
}

func TestEinoExtractPagesErrors(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	_, err = extractor.ExtractPagesFromFile(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err, "文件不存在应返回错误")

	_, err = extractor.ExtractPages(ctx, strings.NewReader("definitely not a pdf"), "memory://bad.pdf")
	assert.Error(t, err, "非PDF内容应返回错误")
}
