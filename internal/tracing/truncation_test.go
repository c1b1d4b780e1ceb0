package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab...ij", TruncateString("abcdefghij", 7))
	assert.Len(t, []rune(TruncateString("简历内容简历内容简历内容", 9)), 9, "按字符而不是字节截断")
}

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("J"))
	assert.Equal(t, "J*", MaskPII("Jo"))
	assert.Equal(t, "J**e", MaskPII("Jane"))
	assert.Equal(t, "98******10", MaskPII("9876543210"))
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "98******10", SafeAttributeValue("contact_number", "9876543210", 100))
	assert.Equal(t, "J**e", SafeAttributeValue("profile.name", "Jane", 100))
	assert.Equal(t, "ab...ij", SafeAttributeValue("design", "abcdefghij", 7))
}

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
