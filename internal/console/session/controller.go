package session

import (
	"fmt"
	"sync"
)

// State is the resolved authentication state of a browser session.
type State int

const (
	// StateUnknown means the store has not been consulted yet.
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Controller owns the session state machine. State starts Unknown, moves to
// Authenticated or Unauthenticated via Resolve, Login and Logout, and every
// transition is pushed to registered watchers.
type Controller struct {
	mu       sync.Mutex
	store    TokenStore
	state    State
	nextID   int
	watchers map[int]func(State)
}

func NewController(store TokenStore) *Controller {
	return &Controller{
		store:    store,
		state:    StateUnknown,
		watchers: make(map[int]func(State)),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Authenticated reports whether the session is resolved and signed in.
func (c *Controller) Authenticated() bool {
	return c.State() == StateAuthenticated
}

// Token returns the stored token, if any.
func (c *Controller) Token() (string, bool) {
	return c.store.Load()
}

// Resolve settles an Unknown state from store contents. A present token
// counts as authenticated until Validate says otherwise.
func (c *Controller) Resolve() State {
	if _, ok := c.store.Load(); ok {
		c.transition(StateAuthenticated)
	} else {
		c.transition(StateUnauthenticated)
	}
	return c.State()
}

// Login persists the token and transitions to Authenticated. When the store
// rejects the write the session stays signed out and the error surfaces to
// the caller.
func (c *Controller) Login(token string) error {
	if token == "" {
		c.transition(StateUnauthenticated)
		return fmt.Errorf("session: empty token")
	}
	if err := c.store.Save(token); err != nil {
		c.transition(StateUnauthenticated)
		return fmt.Errorf("session: save token: %w", err)
	}
	c.transition(StateAuthenticated)
	return nil
}

// Logout clears the store and transitions to Unauthenticated. The state
// changes even when the store fails to clear, so the UI never shows a
// signed-in session it cannot back.
func (c *Controller) Logout() error {
	err := c.store.Clear()
	c.transition(StateUnauthenticated)
	if err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// Watch registers fn for state transitions and returns a cancel func.
// fn runs synchronously on the transitioning goroutine.
func (c *Controller) Watch(fn func(State)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, id)
	}
}

// transition moves to next and notifies watchers, but only on an actual
// change.
func (c *Controller) transition(next State) {
	c.mu.Lock()
	if c.state == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	fns := make([]func(State), 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(next)
	}
}
