package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/soyeahso/obiefood/internal/domain"
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /skill", s.handleSkill)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleConsole)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptimeSeconds,omitempty"`
}

// handleSkill is the turn endpoint: one TurnRequest in, one
// TurnResponse out. This is what the host platform POSTs to.
func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	if !s.authLimiter.allow(r.RemoteAddr) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rate limited — too many failed auth attempts")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	if res := Authorize(s.auth, r); !res.OK {
		s.authLimiter.recordFailure(r.RemoteAddr)
		writeJSONError(w, http.StatusUnauthorized, res.Reason)
		return
	}

	var req domain.TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed turn request: "+err.Error())
		return
	}
	if req.Session.SessionID == "" {
		writeJSONError(w, http.StatusBadRequest, "session.sessionId is required")
		return
	}
	if appID := s.cfg.Skill.AppID; appID != "" && req.ApplicationID != appID {
		s.log.Warn().Str("applicationId", req.ApplicationID).Msg("application id mismatch")
		writeJSONError(w, http.StatusForbidden, "unknown application id")
		return
	}

	resp := s.engine.HandleTurn(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  int64(time.Since(s.startedAt).Seconds()),
	})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
