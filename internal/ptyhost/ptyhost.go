// Package ptyhost spawns the configured shell under a pseudo-terminal and
// shuttles bytes between it and the real terminal, keeping the PTY's window
// size in sync with SIGWINCH on the real TTY.
package ptyhost

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// ErrNoTTY is returned when the real terminal's size cannot be determined,
// a fatal startup condition per the error handling design.
var ErrNoTTY = errors.New("ptyhost: real terminal not available")

// Host owns the child process's pseudo-terminal and the raw-mode state of
// the real TTY the user is sitting at.
type Host struct {
	mu sync.Mutex

	cmd    *exec.Cmd
	master *os.File

	realTTYFd   int
	priorState  *term.State
	winchCh     chan os.Signal
	resizeHooks []func(rows, cols int)
}

// Spawn starts shell as a child attached to a fresh pseudo-terminal sized to
// match the real terminal (fd 0), and puts the real terminal into raw mode.
func Spawn(shell string, args []string, env []string) (*Host, error) {
	rows, cols, err := termSize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTTY, err)
	}

	cmd := exec.Command(shell, args...)
	cmd.Env = env

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("ptyhost: spawn child %q: %w", shell, err)
	}

	state, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		master.Close()
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("ptyhost: set real TTY raw: %w", err)
	}

	h := &Host{
		cmd:        cmd,
		master:     master,
		realTTYFd:  int(os.Stdin.Fd()),
		priorState: state,
		winchCh:    make(chan os.Signal, 4),
	}
	signal.Notify(h.winchCh, syscall.SIGWINCH)
	go h.watchResize()

	return h, nil
}

// OnResize registers a callback invoked whenever the real TTY's window size
// changes and the PTY has been resized to match. The Screen model subscribes
// here so it can grow or shrink its grid.
func (h *Host) OnResize(fn func(rows, cols int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resizeHooks = append(h.resizeHooks, fn)
}

func (h *Host) watchResize() {
	for range h.winchCh {
		rows, cols, err := termSize()
		if err != nil {
			continue
		}
		_ = pty.Setsize(h.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		h.mu.Lock()
		hooks := append([]func(rows, cols int){}, h.resizeHooks...)
		h.mu.Unlock()
		for _, fn := range hooks {
			fn(rows, cols)
		}
	}
}

// Size returns the real terminal's current window size (read from stdin),
// which is the size the PTY is kept at.
func (h *Host) Size() (rows, cols int, err error) {
	return termSize()
}

// Read blocks until bytes arrive from the child's PTY master side.
func (h *Host) Read(b []byte) (int, error) {
	return h.master.Read(b)
}

// Write forwards bytes to the child's stdin via the PTY master side.
func (h *Host) Write(b []byte) (int, error) {
	return h.master.Write(b)
}

// ChildWaitStatus blocks until the child exits and returns its exit code.
func (h *Host) ChildWaitStatus() (int, error) {
	err := h.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Close restores the real TTY's prior termios state and releases the PTY.
func (h *Host) Close() error {
	signal.Stop(h.winchCh)
	_ = term.Restore(h.realTTYFd, h.priorState)
	return h.master.Close()
}

// Kill sends SIGKILL to the child, used when a fatal error must tear the
// session down immediately.
func (h *Host) Kill() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

func termSize() (rows, cols int, err error) {
	ws, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Rows), int(ws.Cols), nil
}
