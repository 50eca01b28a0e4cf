package app

// Countdown counts whole seconds down to zero. It only moves when ticked.
type Countdown struct {
	remaining int
}

func NewCountdown(seconds int) Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return Countdown{remaining: seconds}
}

// Tick removes one second and reports whether this tick reached zero.
// Ticking an expired countdown is a no-op that reports false.
func (c *Countdown) Tick() bool {
	if c.remaining <= 0 {
		return false
	}
	c.remaining--
	return c.remaining == 0
}

func (c *Countdown) Reset(seconds int) {
	*c = NewCountdown(seconds)
}

func (c Countdown) Remaining() int {
	return c.remaining
}
