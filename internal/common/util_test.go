package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray(t *testing.T) {
	buf := GenerateRandByteArray(24)
	require.NotNil(t, buf)
	assert.Len(t, buf, 24)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("password")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 8), buf)

	WipeByteArray(nil)
}

func TestSentinelsWrap(t *testing.T) {
	wrapped := fmt.Errorf("loading user: %w", ErrorNotFound)
	assert.True(t, errors.Is(wrapped, ErrorNotFound))
	assert.False(t, errors.Is(wrapped, ErrorForbidden))
}
