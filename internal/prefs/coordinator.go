package prefs

import (
	"context"
	"sync"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
)

// DefaultFetchAbandon bounds how long a turn may wait on the background
// preference fetch before proceeding without it.
const DefaultFetchAbandon = 2 * time.Second

// fetchState tracks the coordinator's lifecycle.
type fetchState int

const (
	stateIdle fetchState = iota
	stateFetching
	stateSettled
)

// Coordinator reconciles a session's background preference fetch with a
// turn that may arrive before, during, or after it completes.
//
// Exactly one of {fetch completion, abandonment timer} performs the
// fetching→settled transition; the loser is a no-op. The registered
// continuation, if any, is invoked exactly once. All other session state
// is mutated only on the conversation's logical thread, so the only
// synchronization needed lives here.
type Coordinator struct {
	client  Client
	timeout time.Duration
	log     *logging.Logger

	mu       sync.Mutex
	state    fetchState
	pref     *domain.Preference
	callback func()
	timer    *time.Timer
}

// NewCoordinator creates an idle coordinator. timeout <= 0 uses
// DefaultFetchAbandon.
func NewCoordinator(client Client, timeout time.Duration, log *logging.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultFetchAbandon
	}
	return &Coordinator{
		client:  client,
		timeout: timeout,
		log:     log.Sub("prefs.fetch"),
	}
}

// Begin starts the background preference fetch for the given user and
// arms the abandonment timer. It is called once at session start; without
// a user identity it stays idle and turns proceed immediately.
func (c *Coordinator) Begin(ctx context.Context, userID string) {
	if userID == "" || c.client == nil {
		return
	}

	c.mu.Lock()
	if c.state != stateIdle {
		c.mu.Unlock()
		return
	}
	c.state = stateFetching
	c.timer = time.AfterFunc(c.timeout, func() {
		if c.settle(nil) {
			c.log.Debug().Str("user", userID).Msg("preference fetch abandoned")
		}
	})
	c.mu.Unlock()

	c.log.Debug().Str("user", userID).Msg("preference fetch started")

	go func() {
		pref, err := c.client.Get(ctx, userID)
		if err != nil {
			// A store or payload error is never surfaced to the user;
			// it just means no saved preference.
			c.log.Warn().Err(err).Str("user", userID).Msg("preference fetch failed")
			c.settle(nil)
			return
		}
		if c.settle(pref) {
			c.log.Debug().Str("user", userID).Bool("found", pref != nil).Msg("preference fetch settled")
		}
	}()
}

// settle performs the fetching→settled transition. Only the first caller
// wins; it stores the result, clears the continuation registration, and
// invokes the continuation outside the lock. Late callers report false
// and have no effect.
func (c *Coordinator) settle(pref *domain.Preference) bool {
	c.mu.Lock()
	if c.state == stateSettled {
		c.mu.Unlock()
		return false
	}
	c.state = stateSettled
	if pref != nil {
		c.pref = pref
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	cb := c.callback
	c.callback = nil
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// Defer registers fn as the turn's continuation if the fetch is still in
// flight, returning true; the coordinator will invoke it exactly once
// when the fetch settles. If the fetch already settled (or never
// started), Defer returns false and the caller runs immediately. The
// registration slot holds at most one continuation.
func (c *Coordinator) Defer(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateFetching {
		return false
	}
	c.callback = fn
	return true
}

// Fetching reports whether the background fetch is still outstanding.
func (c *Coordinator) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateFetching
}

// Preference returns the fetched preference, or nil when none was found
// or the fetch has not settled yet.
func (c *Coordinator) Preference() *domain.Preference {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pref
}
