// Package speechqueue implements the FIFO-with-interrupt speech queue and
// the backend Driver interface, porting speech/mod.rs's SpeechQueue and the
// in-process/subprocess backend split from speech/proc_driver.rs.
package speechqueue

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Utterance is one unit of text submitted to a Driver.
type Utterance struct {
	Text      string
	Interrupt bool
}

// Driver is a speech backend: in-process synthesizer or JSON-RPC
// subprocess. Speak and Stop must not block longer than the caller's
// patience; SetRate adjusts speaking rate where supported.
type Driver interface {
	Speak(u Utterance) error
	Stop() error
	SetRate(rate float64) error
	Close() error
}

// Queue is a single-consumer FIFO of pending utterances with interrupt
// semantics: enqueuing an utterance with Interrupt set clears everything
// still pending (not yet handed to the driver) and issues Stop to the
// driver before the next Speak.
type Queue struct {
	mu      sync.Mutex
	pending []Utterance
	driver  Driver
	logger  *log.Logger
	healthy bool
}

// New creates a Queue delivering to driver.
func New(driver Driver, logger *log.Logger) *Queue {
	return &Queue{driver: driver, logger: logger, healthy: true}
}

// Enqueue appends u, first flushing pending non-started utterances and
// issuing Stop to the backend if u is an interrupt.
func (q *Queue) Enqueue(u Utterance) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if u.Interrupt {
		q.pending = q.pending[:0]
		if err := q.driver.Stop(); err != nil {
			q.noteUnhealthy("stop", err)
		}
	}
	q.pending = append(q.pending, u)
}

// Stop flushes all pending utterances and tells the backend to stop
// speaking, the "stop_speaking" action and spec 8's "stop with no pending
// utterance is a no-op" boundary case (Stop on an already-idle driver is
// just another Stop call, which drivers must accept as a no-op).
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = q.pending[:0]
	if err := q.driver.Stop(); err != nil {
		q.noteUnhealthy("stop", err)
	}
}

// Flush hands every pending utterance to the driver in order, per spec
// 4.H's "flush the speech queue to the backend" event-loop step.
func (q *Queue) Flush() {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, u := range batch {
		if err := q.driver.Speak(u); err != nil {
			q.noteUnhealthy("speak", err)
		}
	}
}

// SetRate forwards a rate change to the backend.
func (q *Queue) SetRate(rate float64) error {
	return q.driver.SetRate(rate)
}

// Healthy reports whether every driver call so far has succeeded: the first
// driver error clears the flag and nothing sets it again. No timeout is
// applied to driver calls, and the event loop does not call Healthy.
func (q *Queue) Healthy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.healthy
}

func (q *Queue) noteUnhealthy(op string, err error) {
	q.healthy = false
	if q.logger != nil {
		q.logger.Error("speech backend error", "op", op, "err", err)
	}
}

// Close releases the backend's resources.
func (q *Queue) Close() error {
	return q.driver.Close()
}
