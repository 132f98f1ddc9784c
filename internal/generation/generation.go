package generation

import "sync/atomic"

// Counter issues monotonically increasing tokens. Only the most recently
// issued token is current.
type Counter struct {
	n atomic.Uint64
}

// Next issues a new token and makes it current.
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// Current returns the most recently issued token, zero when none was issued.
func (c *Counter) Current() uint64 {
	return c.n.Load()
}

// IsCurrent reports whether token is still the latest issued one.
func (c *Counter) IsCurrent(token uint64) bool {
	return c.n.Load() == token
}

// Controller tags loads and refreshes so that results of superseded requests
// can be dropped.
type Controller struct {
	load    Counter
	refresh Counter
}

// NewController returns a Controller with no tokens issued.
func NewController() *Controller {
	return &Controller{}
}

// Ticket captures the tokens a request was issued under.
type Ticket struct {
	Load    uint64
	Refresh uint64

	c         *Controller
	isRefresh bool
}

// BeginLoad issues a new load token. Any outstanding refresh belongs to the
// previous load and is therefore superseded too.
func (c *Controller) BeginLoad() Ticket {
	return Ticket{Load: c.load.Next(), Refresh: c.refresh.Current(), c: c}
}

// BeginRefresh issues a new refresh token under the current load. An
// outstanding load is superseded by it.
func (c *Controller) BeginRefresh() Ticket {
	return Ticket{Load: c.load.Current(), Refresh: c.refresh.Next(), c: c, isRefresh: true}
}

// Cancel supersedes every outstanding load and refresh.
func (c *Controller) Cancel() {
	c.load.Next()
	c.refresh.Next()
}

// LoadToken returns the current load token.
func (c *Controller) LoadToken() uint64 { return c.load.Current() }

// RefreshToken returns the current refresh token.
func (c *Controller) RefreshToken() uint64 { return c.refresh.Current() }

// Current reports whether the ticket is still the last one issued. Any later
// load or refresh supersedes it, whichever kind it was.
func (t Ticket) Current() bool {
	if t.c == nil {
		return false
	}
	return t.c.load.IsCurrent(t.Load) && t.c.refresh.IsCurrent(t.Refresh)
}

// IsRefresh reports whether the ticket was issued by BeginRefresh.
func (t Ticket) IsRefresh() bool { return t.isRefresh }
