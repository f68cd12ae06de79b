// Package debounce provides hysteresis counters that turn noisy per-sample
// conditions into edge events.
package debounce

// Counter requires Required consecutive confirming samples before it fires.
// It fires once per run of confirmations; a disconfirming sample resets it.
type Counter struct {
	required int
	current  int
}

// NewCounter returns a counter firing after n consecutive confirmations.
// n < 1 is treated as 1.
func NewCounter(n int) *Counter {
	if n < 1 {
		n = 1
	}
	return &Counter{required: n}
}

// Observe feeds one sample and reports whether this is the tick on which the
// run of confirmations first reached the threshold.
func (c *Counter) Observe(confirming bool) bool {
	if !confirming {
		c.current = 0
		return false
	}
	if c.current >= c.required {
		return false
	}
	c.current++
	return c.current == c.required
}

// Reset clears the count so the next run can fire again.
func (c *Counter) Reset() {
	c.current = 0
}

// Count returns the current run length, capped at the threshold.
func (c *Counter) Count() int {
	return c.current
}

// Reached reports whether the current run has reached the threshold.
func (c *Counter) Reached() bool {
	return c.current >= c.required
}

// Required returns the threshold.
func (c *Counter) Required() int {
	return c.required
}

// Decaying counts confirmations but only decrements (floored at zero) on a
// disconfirming sample, so a single noisy sample does not lose accumulated
// progress. It arms once the count reaches the threshold and stays armed.
type Decaying struct {
	required int
	count    int
	armed    bool
}

// NewDecaying returns a decaying counter arming at n.
func NewDecaying(n int) *Decaying {
	if n < 1 {
		n = 1
	}
	return &Decaying{required: n}
}

// Observe feeds one sample and reports whether the counter armed on this tick.
func (d *Decaying) Observe(confirming bool) bool {
	if confirming {
		d.count++
	} else if d.count > 0 {
		d.count--
	}
	if !d.armed && d.count >= d.required {
		d.armed = true
		return true
	}
	return false
}

// Armed reports whether the threshold has ever been reached.
func (d *Decaying) Armed() bool {
	return d.armed
}

// Count returns the current count; never negative.
func (d *Decaying) Count() int {
	return d.count
}
