package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soyeahso/obiefood/internal/domain"
)

// consoleFrame is one inbound dev-console message. Either a full turn
// request, or just an intent name with slot values for convenience.
type consoleFrame struct {
	Turn   *domain.TurnRequest `json:"turn,omitempty"`
	Intent string              `json:"intent,omitempty"`
	Slots  map[string]string   `json:"slots,omitempty"`
}

// consoleReply wraps the engine's response with the session id so a
// console can follow a multi-turn dialog.
type consoleReply struct {
	SessionID string              `json:"sessionId"`
	Response  domain.TurnResponse `json:"response"`
	Error     string              `json:"error,omitempty"`
}

// handleConsole runs the WebSocket dev console: each text frame is one
// turn, each reply one response. The whole connection shares a session,
// so dialog state carries across messages like it would on a device.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	if res := Authorize(s.auth, r); !res.OK {
		s.authLimiter.recordFailure(r.RemoteAddr)
		writeJSONError(w, http.StatusUnauthorized, res.Reason)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(64 * 1024)

	sessionID := "console-" + uuid.New().String()
	s.log.Debug().Str("remote", r.RemoteAddr).Str("session", sessionID).Msg("console connected")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Str("session", sessionID).Msg("console read error")
			}
			break
		}

		var frame consoleFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.writeConsole(conn, consoleReply{SessionID: sessionID, Error: "malformed frame: " + err.Error()})
			continue
		}

		req := frame.turnRequest(sessionID)
		resp := s.engine.HandleTurn(r.Context(), req)
		s.writeConsole(conn, consoleReply{SessionID: sessionID, Response: resp})
	}

	// Tear the console's session down like a device disconnect would.
	s.engine.HandleTurn(r.Context(), domain.TurnRequest{
		RequestType: domain.RequestTypeSessionEnded,
		Session:     domain.SessionInfo{SessionID: sessionID},
	})
}

// turnRequest builds the turn for a console frame. A full turn wins;
// the shorthand form gets the connection's session filled in.
func (f consoleFrame) turnRequest(sessionID string) domain.TurnRequest {
	if f.Turn != nil {
		if f.Turn.Session.SessionID == "" {
			f.Turn.Session.SessionID = sessionID
		}
		return *f.Turn
	}

	slotMap := make(domain.Slots, len(f.Slots))
	for name, value := range f.Slots {
		slotMap[name] = domain.Slot{Name: name, Value: value}
	}
	req := domain.TurnRequest{
		RequestType: domain.RequestTypeIntent,
		Intent:      &domain.Intent{Name: f.Intent, Slots: slotMap},
		Session:     domain.SessionInfo{SessionID: sessionID},
	}
	if f.Intent == "" {
		req.RequestType = domain.RequestTypeLaunch
		req.Intent = nil
	}
	return req
}

func (s *Server) writeConsole(conn *websocket.Conn, reply consoleReply) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(reply); err != nil {
		s.log.Debug().Err(err).Msg("console write failed")
	}
}
