package speechqueue

import "sync"

// InProcessDriver is a speech backend that runs in the same process,
// recording utterances instead of producing audio — the default driver
// stub for environments without a real TTS library wired in, and the
// vehicle tests use to assert on what was spoken.
type InProcessDriver struct {
	mu      sync.Mutex
	spoken  []Utterance
	rate    float64
	stopped int
}

// NewInProcessDriver creates a driver at the default rate of 1.0.
func NewInProcessDriver() *InProcessDriver {
	return &InProcessDriver{rate: 1.0}
}

func (d *InProcessDriver) Speak(u Utterance) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spoken = append(d.spoken, u)
	return nil
}

func (d *InProcessDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped++
	return nil
}

func (d *InProcessDriver) SetRate(rate float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rate = rate
	return nil
}

func (d *InProcessDriver) Close() error { return nil }

// Spoken returns every utterance handed to Speak so far, for test
// assertions.
func (d *InProcessDriver) Spoken() []Utterance {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Utterance(nil), d.spoken...)
}

// StopCount returns how many times Stop has been called.
func (d *InProcessDriver) StopCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Rate returns the current speaking rate.
func (d *InProcessDriver) Rate() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rate
}
