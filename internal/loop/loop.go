// Package loop implements the single-threaded cooperative event loop that
// multiplexes PTY output, real TTY input, SIGINT and the diff debounce
// timer, porting main.rs's do_events dispatch and app.rs's App struct
// into channel-driven Go. The speech backend has no wakeup channel of its
// own: queued speech is flushed at the end of each iteration.
package loop

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"

	"github.com/lectorhq/lector/internal/actions"
	"github.com/lectorhq/lector/internal/livereader"
	"github.com/lectorhq/lector/internal/ptyhost"
	"github.com/lectorhq/lector/internal/screen"
	"github.com/lectorhq/lector/internal/speechqueue"
	"github.com/lectorhq/lector/internal/telemetry"
)

// SoftDeadline bounds one iteration's work, per spec section 5: callbacks
// exceeding it are allowed to finish, but a warning hook fires.
const SoftDeadline = 100 * time.Millisecond

// DiffDelay and MaxDiffDelay debounce bursty PTY output before running the
// live reader, per SPEC_FULL.md 3.A: wait DiffDelay after the last chunk in
// case more is coming, but never wait longer than MaxDiffDelay from the
// first unprocessed chunk.
const (
	DiffDelay    = 1 * time.Millisecond
	MaxDiffDelay = 300 * time.Millisecond
)

// Loop owns every core component and drives the single event loop. No
// other goroutine touches Screen, the dispatcher, or the review navigator
// while Run is executing an iteration.
type Loop struct {
	Host       *ptyhost.Host
	Screen     *screen.Screen
	Parser     *screen.Parser
	Dispatcher *actions.Dispatcher
	LiveReader *livereader.Reader
	Speech     *speechqueue.Queue
	TTYIn      *os.File
	Logger     *log.Logger
	Tracer     trace.Tracer // nil disables per-iteration spans

	OnWarnDeadline func(elapsed time.Duration)
	OnError        func(err error)
}

func (l *Loop) traceIteration(ctx context.Context, source string) func() {
	if l.Tracer == nil {
		return func() {}
	}
	_, span := telemetry.IterationSpan(ctx, l.Tracer, source)
	return func() { span.End() }
}

// Run blocks, driving the loop until ctx is cancelled or the child exits.
// It returns the child's exit code (spec section 6) and a fatal error, if
// any. On a clean ctx cancellation it returns (0, nil).
func (l *Loop) Run(ctx context.Context) (int, error) {
	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, unix.SIGINT)

	ptyCh := make(chan []byte, 1)
	ptyErrCh := make(chan error, 1)
	go l.pumpPTY(ptyCh, ptyErrCh)

	ttyCh := make(chan []byte, 1)
	ttyErrCh := make(chan error, 1)
	go l.pumpTTY(ttyCh, ttyErrCh)

	var pendingDirty bool
	var firstPendingAt time.Time
	diffTimer := time.NewTimer(time.Hour)
	diffTimer.Stop()

	for {
		start := time.Now()
		select {
		case <-ctx.Done():
			return 0, nil

		case sig := <-sigCh:
			end := l.traceIteration(ctx, "signal")
			l.handleSignal(sig)
			end()

		case <-ptyErrCh:
			l.flushSpeech()
			code, err := l.Host.ChildWaitStatus()
			return code, err

		case chunk := <-ptyCh:
			end := l.traceIteration(ctx, "pty")
			l.Parser.Parse(chunk)
			if _, err := os.Stdout.Write(chunk); err != nil && l.OnError != nil {
				l.OnError(err)
			}
			if !pendingDirty {
				pendingDirty = true
				firstPendingAt = time.Now()
				diffTimer.Reset(DiffDelay)
			} else if time.Since(firstPendingAt) < MaxDiffDelay {
				diffTimer.Reset(DiffDelay)
			}
			end()

		case <-diffTimer.C:
			end := l.traceIteration(ctx, "diff-timer")
			if pendingDirty {
				l.runDiff()
				pendingDirty = false
			}
			end()

		case err := <-ttyErrCh:
			if l.OnError != nil {
				l.OnError(err)
			}

		case key := <-ttyCh:
			end := l.traceIteration(ctx, "tty")
			l.handleKey(key)
			end()
		}

		l.flushSpeech()

		if elapsed := time.Since(start); elapsed > SoftDeadline && l.OnWarnDeadline != nil {
			l.OnWarnDeadline(elapsed)
		}
	}
}

func (l *Loop) pumpPTY(out chan<- []byte, errCh chan<- error) {
	buf := make([]byte, 8192)
	for {
		n, err := l.Host.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			out <- cp
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (l *Loop) pumpTTY(out chan<- []byte, errCh chan<- error) {
	buf := make([]byte, 4096)
	for {
		n, err := l.TTYIn.Read(buf)
		if n > 0 {
			cp := make([]byte, n)
			copy(cp, buf[:n])
			out <- cp
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (l *Loop) handleSignal(sig os.Signal) {
	// SIGINT is claimed here purely so Go's default signal disposition
	// (process termination) never fires; Ctrl-C itself reaches the child
	// as a regular byte through the normal TTY pump, since the real
	// terminal is in raw mode and does not generate a terminal-driver
	// SIGINT of its own.
	_ = sig
}

// runDiff applies the live-reader policy to the screen's current snapshot
// and enqueues the resulting utterances, per spec 4.H's "run the
// diff/live reader" step.
func (l *Loop) runDiff() {
	snap := l.Screen.Snapshot()
	l.Dispatcher.SetSnapshot(snap)
	for _, u := range l.LiveReader.Observe(snap) {
		l.Speech.Enqueue(speechqueue.Utterance{Text: u.Text, Interrupt: u.Interrupt})
	}
}

// handleKey decodes one raw key chunk and either dispatches it to an
// action or forwards it to the PTY, per spec 4.G's "otherwise forward the
// bytes to the PTY" fallback.
func (l *Loop) handleKey(raw []byte) {
	key := actions.KeyString(raw)
	l.LiveReader.NoteLastKey(raw)
	if consumed := l.Dispatcher.Handle(key, raw); !consumed {
		if _, err := l.Host.Write(raw); err != nil && l.OnError != nil {
			l.OnError(err)
		}
	}
}

func (l *Loop) flushSpeech() {
	l.Speech.Flush()
}
