package dialog

import (
	"context"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/logging"
	"github.com/soyeahso/obiefood/internal/menu"
	"github.com/soyeahso/obiefood/internal/prefs"
)

type handlerFunc func(ctx context.Context, sess *Session, intent *domain.Intent) domain.TurnResponse

// Engine turns inbound requests into responses. It is safe for
// concurrent use across sessions; turns within one session arrive
// serialized from the host.
type Engine struct {
	sessions *Registry
	store    prefs.Client
	menus    *menu.Engine
	log      *logging.Logger
	now      func() time.Time

	handlers map[string]handlerFunc
}

// NewEngine wires the dialog engine. store may be nil when preference
// persistence is disabled; saved restrictions then only last a session.
func NewEngine(sessions *Registry, store prefs.Client, menus *menu.Engine, log *logging.Logger) *Engine {
	e := &Engine{
		sessions: sessions,
		store:    store,
		menus:    menus,
		log:      log.Sub("dialog"),
		now:      time.Now,
	}
	e.handlers = map[string]handlerFunc{
		domain.IntentOneshotMenu:       e.handleOneshotMenu,
		domain.IntentOneshotCompliment: e.handleCompliment,
		domain.IntentSetRestriction:    e.handleSetRestriction,
		domain.IntentRemoveRestriction: e.handleRemoveRestriction,
		domain.IntentDialogMenu:        e.handleDialogMenu,
		domain.IntentSupportedMenus:    e.handleSupportedMenus,
		domain.IntentHelp:              e.handleHelp,
		domain.IntentRepeat:            e.handleRepeat,
		domain.IntentStop:              e.handleStop,
		domain.IntentCancel:            e.handleCancel,
	}
	return e
}

// HandleTurn processes one request and always produces a response, even
// for malformed turns; a voice surface has no useful error channel.
func (e *Engine) HandleTurn(ctx context.Context, req domain.TurnRequest) domain.TurnResponse {
	switch req.RequestType {
	case domain.RequestTypeLaunch:
		sess := e.sessions.Obtain(ctx, req.Session)
		e.log.Debug().Str("session", sess.ID).Msg("launch")
		return ask(sess, welcomeText, welcomeReprompt)

	case domain.RequestTypeSessionEnded:
		e.sessions.Remove(req.Session.SessionID)
		return domain.TurnResponse{ShouldEndSession: true}

	case domain.RequestTypeIntent:
		sess := e.sessions.Obtain(ctx, req.Session)
		if req.Intent == nil {
			return ask(sess, repeatPrompt, otherMealPrompt)
		}
		h, ok := e.handlers[req.Intent.Name]
		if !ok {
			e.log.Warn().Str("intent", req.Intent.Name).Msg("unknown intent")
			return ask(sess, repeatPrompt, otherMealPrompt)
		}
		e.log.Debug().Str("session", sess.ID).Str("intent", req.Intent.Name).Msg("turn")
		resp := h(ctx, sess, req.Intent)
		if resp.ShouldEndSession {
			e.sessions.Remove(sess.ID)
		}
		return resp

	default:
		// Never fatal: an unrecognized envelope still gets a spoken
		// recovery and the session stays open.
		e.log.Warn().Str("requestType", req.RequestType).Msg("unknown request type")
		sess := e.sessions.Obtain(ctx, req.Session)
		return ask(sess, repeatPrompt, otherMealPrompt)
	}
}
