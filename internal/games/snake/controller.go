package snake

import "time"

// rateDivisor sets the minimum spacing between accepted direction changes
// to a quarter of the step interval.
const rateDivisor = 4

// AcceptDirection reports whether a proposed turn is allowed.
// A turn is rejected when it reverses current, or when it arrives less than
// interval/4 after the previous accepted change.
func AcceptDirection(requested, current Direction, lastChange, now time.Time, interval time.Duration) bool {
	if requested == current.Opposite() {
		return false
	}
	if !lastChange.IsZero() && now.Sub(lastChange) < interval/rateDivisor {
		return false
	}
	return true
}

// Controller buffers at most one pending direction between steps.
// A newer accepted proposal overwrites the older one.
type Controller struct {
	pending    Direction
	lastChange time.Time
}

// NewController returns a controller pending in direction d.
func NewController(d Direction) *Controller {
	return &Controller{pending: d}
}

// Propose applies AcceptDirection against the committed direction and, when
// accepted, replaces the pending direction.
func (c *Controller) Propose(requested, current Direction, now time.Time, interval time.Duration) bool {
	if !AcceptDirection(requested, current, c.lastChange, now, interval) {
		return false
	}
	c.pending = requested
	c.lastChange = now
	return true
}

// Pending returns the direction the next step will use.
func (c *Controller) Pending() Direction {
	return c.pending
}

// LastChange returns the time of the last accepted proposal.
func (c *Controller) LastChange() time.Time {
	return c.lastChange
}

// Reset sets the pending direction and forgets the rate window.
func (c *Controller) Reset(d Direction) {
	c.pending = d
	c.lastChange = time.Time{}
}
