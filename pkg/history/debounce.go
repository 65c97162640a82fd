package history

import "time"

// DefaultDelay is how long the graph must stay unchanged before a snapshot
// is taken.
const DefaultDelay = 500 * time.Millisecond

// Debouncer is a restart-on-event deadline. It owns no goroutine or timer:
// the event loop calls Touch on every change and polls Due.
type Debouncer struct {
	Delay time.Duration

	deadline time.Time
	pending  bool
}

// Touch restarts the deadline from now.
func (d *Debouncer) Touch(now time.Time) {
	delay := d.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	d.deadline = now.Add(delay)
	d.pending = true
}

// Due reports whether the deadline has passed. It returns true once per
// burst of touches and clears the pending flag.
func (d *Debouncer) Due(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a deadline is armed.
func (d *Debouncer) Pending() bool { return d.pending }

// Cancel disarms the deadline.
func (d *Debouncer) Cancel() { d.pending = false }
