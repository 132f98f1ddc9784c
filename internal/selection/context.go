package selection

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/discountsync/pkg/errors"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/logger"
)

// Event announces a change of the active scope. Selected is false when the
// selection was cleared.
type Event struct {
	Scope    int64
	Previous int64
	Selected bool
}

// Persister remembers the last selected scope across restarts.
type Persister interface {
	Load(ctx context.Context) (int64, bool, error)
	Save(ctx context.Context, scope int64) error
	Clear(ctx context.Context) error
}

// Context holds the active scope of one selection kind (restaurant, chain).
type Context struct {
	name      string
	persister Persister
	logg      *logger.Logger

	mu       sync.Mutex
	current  int64
	selected bool
	subs     map[int]chan Event
	nextSub  int
}

// New returns a Context with nothing selected. A nil persister keeps the
// selection in memory only.
func New(name string, persister Persister, logg *logger.Logger) *Context {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Context{
		name:      name,
		persister: persister,
		logg:      logg,
		subs:      map[int]chan Event{},
	}
}

// Name returns the selection kind.
func (c *Context) Name() string { return c.name }

// Current returns the active scope.
func (c *Context) Current() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.selected
}

// Select makes scope active, persists it and notifies subscribers. Selecting
// the already active scope is a no-op.
func (c *Context) Select(ctx context.Context, scope int64) error {
	if scope <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, i18n.InvalidIdentifier.Fallback).
			WithKey(i18n.InvalidIdentifier.Key).
			WithDetails(map[string]any{"scope": scope})
	}

	c.mu.Lock()
	if c.selected && c.current == scope {
		c.mu.Unlock()
		return nil
	}
	evt := Event{Scope: scope, Previous: c.current, Selected: true}
	c.current, c.selected = scope, true
	c.publishLocked(evt)
	c.mu.Unlock()

	if err := c.persister.Save(ctx, scope); err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "selection", c.name), "persisting selection failed", err)
	}
	return nil
}

// Clear drops the active scope.
func (c *Context) Clear(ctx context.Context) error {
	c.mu.Lock()
	if !c.selected {
		c.mu.Unlock()
		return nil
	}
	evt := Event{Previous: c.current}
	c.current, c.selected = 0, false
	c.publishLocked(evt)
	c.mu.Unlock()

	if err := c.persister.Clear(ctx); err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "selection", c.name), "clearing persisted selection failed", err)
	}
	return nil
}

// Restore activates the persisted scope, if any. It reports whether a scope
// was restored.
func (c *Context) Restore(ctx context.Context) (bool, error) {
	scope, ok, err := c.persister.Load(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading persisted selection")
	}
	if !ok || scope <= 0 {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected {
		return false, nil
	}
	evt := Event{Scope: scope, Selected: true}
	c.current, c.selected = scope, true
	c.publishLocked(evt)
	return true, nil
}

// Subscribe returns a channel of selection events and a cancel func. When
// the subscriber falls behind, older events are dropped in favour of the
// newest one.
func (c *Context) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Context) publishLocked(evt Event) {
	for _, ch := range c.subs {
		offerLatest(ch, evt)
	}
}

func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
