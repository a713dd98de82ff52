package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/dwello-app/rental_marketplace/realtime"
	"github.com/dwello-app/rental_marketplace/session"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 1 << 20
	wsReadDeadline = 120 * time.Second
)

var wsPingInterval = 15 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and parks it on the hub. The token comes
// in a query parameter since browsers cannot set websocket headers.
func ServeWS(hub *realtime.Hub, sessions *session.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		s, err := sessions.Get(r.Context(), token)
		if err != nil {
			log.Printf("WebSocket auth failed: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		conn.SetReadLimit(wsReadLimit)
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		})

		hub.Register(s.UserID, conn)

		// Ping until the read loop ends; the client answers with pongs that
		// push the read deadline forward. WriteControl is safe alongside the
		// hub goroutine's writes; WriteMessage is not.
		stop := make(chan struct{})
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
						return
					}
				}
			}
		}()

		// Inbound frames are ignored; the socket is push-only. The loop
		// exists to notice the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		close(stop)
		hub.Unregister(s.UserID, conn)
	}
}
