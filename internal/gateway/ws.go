package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kodokalabs/tetsuo.26/internal/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return sameOrigin(r.Header.Get("Origin"), r.Host)
	},
}

type wsClientFrame struct {
	Type string `json:"type"`
}

// wsHandler upgrades authenticated connections, sends the connected hello,
// answers ping/status, and relays the hub's sanitized event stream.
func (s *Server) wsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !security.ConstantTimeEqual(s.cfg.Token, bearerToken(r)) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("ws upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		sub := s.hub.subscribe()
		defer s.hub.unsubscribe(sub)

		if err := conn.WriteJSON(wsEvent{Type: "connected", At: time.Now(), Data: map[string]string{"agent": s.cfg.AgentName}}); err != nil {
			return
		}

		done := make(chan struct{})
		go s.wsReadLoop(conn, done)

		for {
			select {
			case evt := <-sub:
				if err := conn.WriteJSON(evt); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}

func (s *Server) wsReadLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame wsClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Type {
		case "ping":
			_ = conn.WriteJSON(wsEvent{Type: "pong", At: time.Now()})
		case "status":
			_ = conn.WriteJSON(wsEvent{Type: "status", At: time.Now(), Data: map[string]any{
				"uptime": time.Since(s.startTime).String(),
			}})
		}
	}
}
