// Package dialog drives the conversation: it owns per-session state,
// dispatches intents, and composes the spoken responses. One turn in,
// one response out; everything the next turn needs to remember lives on
// the Session.
package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
	"github.com/soyeahso/obiefood/internal/prefs"
)

// DefaultIdleTimeout evicts sessions the host never closed cleanly.
const DefaultIdleTimeout = 30 * time.Minute

// Session is the per-conversation state. Turns within one session are
// serialized by the host, so fields here are only touched on that
// logical thread; the coordinator handles the one genuinely concurrent
// piece.
type Session struct {
	ID     string
	UserID string

	// Menu holds the raw menu choice given in a dialog turn while we
	// still wait for a date, and vice versa for Date.
	Menu string
	Date *domain.ResolvedDate

	// Data is the user's saved preference, either fetched at session
	// start or updated by a restriction intent this session.
	Data *domain.Preference

	// Spoken is the last question asked, replayed on a repeat request.
	Spoken string

	Coord *prefs.Coordinator

	// dataSet marks that a restriction intent decided Data this session,
	// so a nil Data means "cleared", not "not fetched".
	dataSet  bool
	lastSeen time.Time
}

// setData records a preference decided during this conversation. It
// overrides whatever the background fetch returned, including with nil.
func (s *Session) setData(pref *domain.Preference) {
	s.Data = pref
	s.dataSet = true
}

// preference returns the effective saved preference for this session:
// one set this conversation wins over the fetched one.
func (s *Session) preference() *domain.Preference {
	if s.dataSet || s.Data != nil {
		return s.Data
	}
	if s.Coord == nil {
		return nil
	}
	return s.Coord.Preference()
}

// Registry tracks live sessions and evicts the ones the host abandoned.
type Registry struct {
	client  prefs.Client
	timeout time.Duration
	idle    time.Duration
	log     *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry. fetchTimeout bounds the
// background preference fetch; idle <= 0 uses DefaultIdleTimeout.
func NewRegistry(client prefs.Client, fetchTimeout, idle time.Duration, log *logging.Logger) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Registry{
		client:   client,
		timeout:  fetchTimeout,
		idle:     idle,
		log:      log.Sub("sessions"),
		sessions: make(map[string]*Session),
	}
}

// Obtain returns the session for info, creating it on first sight. A
// newly created session immediately starts its background preference
// fetch.
func (r *Registry) Obtain(ctx context.Context, info domain.SessionInfo) *Session {
	r.mu.Lock()
	sess, ok := r.sessions[info.SessionID]
	if !ok {
		sess = &Session{
			ID:     info.SessionID,
			UserID: info.UserID,
			Coord:  prefs.NewCoordinator(r.client, r.timeout, r.log),
		}
		r.sessions[info.SessionID] = sess
	}
	sess.lastSeen = time.Now()
	r.mu.Unlock()

	if !ok {
		r.log.Debug().Str("session", info.SessionID).Msg("session created")
		// The fetch outlives the turn that triggered it, so it must not
		// inherit the request context.
		sess.Coord.Begin(context.WithoutCancel(ctx), info.UserID)
	}
	return sess
}

// Remove drops a session, normally on SessionEndedRequest.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		r.log.Debug().Str("session", id).Msg("session removed")
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle past the timeout and reports how many.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, sess := range r.sessions {
		if now.Sub(sess.lastSeen) > r.idle {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.log.Debug().Int("evicted", evicted).Msg("idle sessions swept")
	}
	return evicted
}

// StartSweeper runs Sweep periodically until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context) {
	interval := r.idle / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.Sweep(now)
			}
		}
	}()
}
