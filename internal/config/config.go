// Package config resolves Lector's startup configuration from CLI flags,
// environment variables, and the XDG/macOS config path, using
// spf13/cobra for flag parsing and spf13/viper for the env/file/default
// layering, with fsnotify watching the resolved config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SpeechDriver selects which speech backend the event loop constructs.
type SpeechDriver string

const (
	SpeechDriverTTS  SpeechDriver = "tts"
	SpeechDriverProc SpeechDriver = "proc"
)

// Config holds the fully resolved startup configuration, per spec section
// 6's CLI and environment surface.
type Config struct {
	Shell        string
	SpeechDriver SpeechDriver
	SpeechServer string
	ConfigPath   string
	TERM         string
}

// ErrUsage is returned for flag/argument problems that should exit with
// code 2, per spec section 6.
type ErrUsage struct{ msg string }

func (e ErrUsage) Error() string { return e.msg }

// DefaultConfigPath returns the platform-appropriate default config file
// path: ~/.config/lector/init.lua on Linux, ~/Library/Application
// Support/lector/init.lua on macOS, both routed through
// os.UserConfigDir() so XDG_CONFIG_HOME is honored automatically.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(dir, "lector", "init.lua"), nil
	}
	return filepath.Join(dir, "lector", "init.lua"), nil
}

// Parse builds a cobra command, binds its flags to viper with LECTOR_*
// environment overrides, and resolves args into a Config. args excludes
// the program name (os.Args[1:]).
func Parse(args []string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaultConfigPath, err := DefaultConfigPath()
	if err != nil {
		return Config{}, fmt.Errorf("resolve default config path: %w", err)
	}

	var cfg Config
	var usageErr error

	root := &cobra.Command{
		Use:           "lector",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return nil
		},
	}
	root.SetArgs(args)

	root.PersistentFlags().String("shell", "", "shell to run under the pseudo-terminal (default $SHELL, then /bin/sh)")
	root.PersistentFlags().String("speech-driver", string(SpeechDriverTTS), "speech backend: tts or proc")
	root.PersistentFlags().String("speech-server", "", "path to the proc speech server (required iff speech-driver=proc)")
	root.PersistentFlags().String("config", defaultConfigPath, "path to the config script")

	_ = v.BindPFlag("shell", root.PersistentFlags().Lookup("shell"))
	_ = v.BindPFlag("speech-driver", root.PersistentFlags().Lookup("speech-driver"))
	_ = v.BindPFlag("speech-server", root.PersistentFlags().Lookup("speech-server"))
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	if err := root.Execute(); err != nil {
		return Config{}, ErrUsage{msg: err.Error()}
	}

	shell := v.GetString("shell")
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	driver := SpeechDriver(v.GetString("speech-driver"))
	if driver != SpeechDriverTTS && driver != SpeechDriverProc {
		return Config{}, ErrUsage{msg: fmt.Sprintf("invalid --speech-driver %q", driver)}
	}

	server := v.GetString("speech-server")
	if driver == SpeechDriverProc && server == "" {
		return Config{}, ErrUsage{msg: "--speech-server is required when --speech-driver=proc"}
	}

	term := os.Getenv("TERM")
	if term == "" {
		term = "xterm-256color"
	}

	cfg = Config{
		Shell:        shell,
		SpeechDriver: driver,
		SpeechServer: server,
		ConfigPath:   v.GetString("config"),
		TERM:         term,
	}
	return cfg, usageErr
}

// WatchConfigDir watches the directory containing cfg.ConfigPath and
// invokes onChange whenever a file in it is written or created. The
// returned watcher must be closed by the caller. This does not reload the
// embedded scripting runtime (out of scope); it exists so a future reload
// hook has a concrete, already-wired trigger.
func WatchConfigDir(cfg Config, onChange func(path string)) (*fsnotify.Watcher, error) {
	dir := filepath.Dir(cfg.ConfigPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir %q: %w", dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for event := range watcher.Events {
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				onChange(event.Name)
			}
		}
	}()
	return watcher, nil
}
