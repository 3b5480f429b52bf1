package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsShellFromEnv(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	cfg, err := Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, "/bin/zsh", cfg.Shell)
	assert.Equal(t, SpeechDriverTTS, cfg.SpeechDriver)
}

func TestParseRejectsProcDriverWithoutServer(t *testing.T) {
	_, err := Parse([]string{"--speech-driver", "proc"})
	require.Error(t, err)
	var usageErr ErrUsage
	assert.ErrorAs(t, err, &usageErr)
}

func TestParseAcceptsExplicitFlags(t *testing.T) {
	cfg, err := Parse([]string{"--shell", "/bin/bash", "--speech-driver", "proc", "--speech-server", "/usr/bin/say-server"})
	require.NoError(t, err)
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, SpeechDriverProc, cfg.SpeechDriver)
	assert.Equal(t, "/usr/bin/say-server", cfg.SpeechServer)
}

func TestWatchConfigDirFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{ConfigPath: filepath.Join(dir, "init.lua")}

	events := make(chan string, 1)
	watcher, err := WatchConfigDir(cfg, func(path string) { events <- path })
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(cfg.ConfigPath, []byte("-- x"), 0o644))

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change event")
	}
}
