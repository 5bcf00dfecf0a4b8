package domain

import "fmt"

// Clock is a bounded progress counter shown to the game master.
// The invariant 0 <= Current <= Max holds after construction and every mutation.
type Clock struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Current int    `json:"current" yaml:"current"`
	Max     int    `json:"max" yaml:"max"`
}

// NewClock validates the bounds and returns the clock.
func NewClock(id, name string, current, max int) (Clock, error) {
	c := Clock{ID: id, Name: name, Current: current, Max: max}
	if err := c.Validate(); err != nil {
		return Clock{}, err
	}
	return c, nil
}

// Validate reports whether the clock satisfies its bounds.
func (c Clock) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidClock)
	}
	if c.Max < 0 || c.Current < 0 || c.Current > c.Max {
		return fmt.Errorf("%w: %s current=%d max=%d", ErrInvalidClock, c.ID, c.Current, c.Max)
	}
	return nil
}

// Apply returns the clock moved by delta and clamped to [0, Max].
func (c Clock) Apply(delta int) Clock {
	c.Current = clamp(c.Current+delta, 0, c.Max)
	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DefaultClocks returns the clocks every run starts with unless configured otherwise.
func DefaultClocks() []Clock {
	return []Clock{
		{ID: "alert", Name: "ALERT", Current: 0, Max: 4},
		{ID: "suspicion", Name: "SUSPICION", Current: 0, Max: 6},
		{ID: "resources", Name: "RESOURCES", Current: 5, Max: 5},
	}
}
