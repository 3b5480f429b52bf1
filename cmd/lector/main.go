// Command lector runs a shell under a pseudo-terminal and speaks what
// changes on screen, mirroring the child's output to the real terminal
// while a review cursor, table engine, and action dispatcher give a
// screen-reader user explicit control over what gets read.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lectorhq/lector/internal/actions"
	"github.com/lectorhq/lector/internal/clipboard"
	"github.com/lectorhq/lector/internal/config"
	"github.com/lectorhq/lector/internal/livereader"
	"github.com/lectorhq/lector/internal/logging"
	"github.com/lectorhq/lector/internal/loop"
	"github.com/lectorhq/lector/internal/ptyhost"
	"github.com/lectorhq/lector/internal/review"
	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/speechqueue"
	"github.com/lectorhq/lector/internal/symbols"
	"github.com/lectorhq/lector/internal/telemetry"
)

const (
	exitUsage = 2
	exitFatal = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "lector:", err)
		var usageErr config.ErrUsage
		if errors.As(err, &usageErr) {
			return exitUsage
		}
		return exitFatal
	}

	logger, closer, err := logging.New(logging.Options{FilePath: os.Getenv("LECTOR_LOG_FILE")})
	if err != nil {
		fmt.Fprintln(os.Stderr, "lector: logging setup:", err)
		return exitFatal
	}
	if closer != nil {
		defer closer.Close()
	}

	tracer, shutdownTelemetry, err := telemetry.Setup(traceWriter())
	if err != nil {
		logger.Error("telemetry setup failed", "err", err)
	}
	if shutdownTelemetry != nil {
		defer shutdownTelemetry(context.Background())
	}

	watcher, err := config.WatchConfigDir(cfg, func(path string) {
		logger.Info("config file changed", "path", path)
	})
	if err != nil {
		logger.Warn("config directory watch failed", "err", err)
	} else {
		defer watcher.Close()
	}

	host, err := ptyhost.Spawn(cfg.Shell, nil, append(os.Environ(), "TERM="+cfg.TERM))
	if err != nil {
		fmt.Fprintln(os.Stderr, "lector:", err)
		return exitFatal
	}
	defer host.Close()

	rows, cols, err := host.Size()
	if err != nil {
		rows, cols = 24, 80
	}
	scr := screen.New(rows, cols)
	host.OnResize(func(r, c int) { scr.Resize(r, c) })

	parser := screen.NewParser(scr)
	nav := review.New(scr.Snapshot())
	clip := clipboard.New(clipboard.DefaultCapacity)
	symTable := symbols.Default()
	dispatcher := actions.New(nav, clip, symTable)
	reader := livereader.New(symTable)

	driver, err := buildSpeechDriver(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lector:", err)
		return exitFatal
	}
	speechQueue := speechqueue.New(driver, logger)
	defer speechQueue.Close()

	dispatcher.OnSpeak = func(text string, interrupt bool) {
		speechQueue.Enqueue(speechqueue.Utterance{Text: text, Interrupt: interrupt})
	}
	dispatcher.OnModeChange = func(from, to actions.Mode) {
		logger.Debug("mode change", "from", from, "to", to)
	}
	dispatcher.OnStopSpeaking = func() {
		speechQueue.Stop()
	}
	dispatcher.OnToggleAutoRead = func() bool {
		reader.AutoRead = !reader.AutoRead
		return reader.AutoRead
	}
	dispatcher.OnClipboardPaste = func(text string) {
		if _, err := host.Write([]byte(text)); err != nil {
			logger.Error("clipboard paste write failed", "err", err)
		}
	}

	l := &loop.Loop{
		Host:       host,
		Screen:     scr,
		Parser:     parser,
		Dispatcher: dispatcher,
		LiveReader: reader,
		Speech:     speechQueue,
		TTYIn:      os.Stdin,
		Logger:     logger,
		Tracer:     tracer,
		OnWarnDeadline: func(elapsed time.Duration) {
			logger.Warn("event loop iteration exceeded soft deadline", "elapsed", elapsed)
		},
		OnError: func(err error) {
			logger.Error("recoverable error", "err", err)
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	code, runErr := l.Run(ctx)
	speechQueue.Stop()
	speechQueue.Flush()
	if runErr != nil {
		logger.Error("child process error", "err", runErr)
		return exitFatal
	}
	return code
}

func buildSpeechDriver(cfg config.Config) (speechqueue.Driver, error) {
	switch cfg.SpeechDriver {
	case config.SpeechDriverProc:
		return speechqueue.NewProcDriver(cfg.SpeechServer)
	default:
		return speechqueue.NewInProcessDriver(), nil
	}
}

func traceWriter() *os.File {
	if path := os.Getenv("LECTOR_TRACE_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			return f
		}
	}
	f, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	return f
}
