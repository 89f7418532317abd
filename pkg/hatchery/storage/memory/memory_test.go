package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAndGet(t *testing.T) {
	backend := New()

	_, ok := backend.Get("goose")
	assert.False(t, ok)

	require.NoError(t, backend.Upload(context.Background(), "goose", strings.NewReader("honk")))
	require.NoError(t, backend.Upload(context.Background(), "goose", strings.NewReader("HONK")))

	data, ok := backend.Get("goose")
	require.True(t, ok)
	assert.Equal(t, "HONK", string(data))
	assert.Equal(t, 1, backend.Len())
}
