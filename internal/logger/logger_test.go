package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVs(t *testing.T) {
	long := strings.Repeat("x", maxValueLen+50)
	got := sanitizeKVs([]interface{}{
		"api_key", "abc",
		"key", "sk-ant-REDACTED",
		"image", "data:image/png;base64,AAAA",
		"body", long,
		"input_tokens", 42,
		"dangling",
	})
	require.Len(t, got, 11)
	assert.Equal(t, "[REDACTED]", got[1])
	assert.Equal(t, "[REDACTED]", got[3])
	assert.Equal(t, "[data url, 26 bytes]", got[5])
	assert.Len(t, got[7], maxValueLen+len("…"))
	assert.Equal(t, 42, got[9])
	assert.Equal(t, "dangling", got[10])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New("dev", "loud")
	assert.Error(t, err)

	l, err := New("prod", "debug")
	require.NoError(t, err)
	l.Debug("ok", "k", "v")
}

func TestDefaultLogger(t *testing.T) {
	assert.NotNil(t, L())
	SetDefault(nil)
	assert.NotNil(t, L())
	L().Info("discarded")
}
