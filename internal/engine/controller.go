package engine

import "sync"

// Flags are the host-observed inputs: Active is level-triggered, Completed
// and Reset act on their rising edge.
type Flags struct {
	Active    bool
	Completed bool
	Reset     bool
}

// Controller turns a stream of Flags into engine commands.
type Controller struct {
	e *Engine

	mu   sync.Mutex
	prev Flags
}

// NewController returns a controller for e with all flags initially false.
func NewController(e *Engine) *Controller {
	return &Controller{e: e}
}

// Apply reacts to the new flag values. Edges are handled before the active
// level so that a reset with Active still set restarts ticking from Start.
func (c *Controller) Apply(f Flags) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f.Completed && !c.prev.Completed {
		c.e.Complete()
	}
	if f.Reset && !c.prev.Reset {
		c.e.Reset()
	}
	if f.Active {
		c.e.Activate()
	} else {
		c.e.Deactivate()
	}
	c.prev = f
}

// Flags returns the last applied flags.
func (c *Controller) Flags() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prev
}
