package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoutesToFileWhenConfigured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lector.log")
	logger, closer, err := New(Options{FilePath: path})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	logger.Info("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewDefaultsToStderrWithNoCloser(t *testing.T) {
	_, closer, err := New(Options{})
	require.NoError(t, err)
	assert.Nil(t, closer)
}
