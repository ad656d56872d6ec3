package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/obiefood/internal/logging"
)

// The logging middleware wraps responses in statusWriter; an upgrade
// handler must still be able to hijack the connection through it.
func TestMiddlewareAllowsHijack(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Surfaces to the client as a failed handshake.
			return
		}
		conn.Close()
	})

	ts := httptest.NewServer(withMiddleware(mux, logging.New(nil, "silent")))
	defer ts.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+ts.URL[len("http"):]+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestStatusWriterUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	assert.Equal(t, http.ResponseWriter(rec), sw.Unwrap())
}
