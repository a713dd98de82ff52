package controllers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dwello-app/rental_marketplace/realtime"
	"github.com/dwello-app/rental_marketplace/session"
	"github.com/gorilla/websocket"
)

// Hub deliveries and the keepalive pings target the same connection from
// different goroutines; this drives both at once to make sure they coexist.
func TestServeWSConcurrentPingsAndSends(t *testing.T) {
	oldInterval := wsPingInterval
	wsPingInterval = time.Millisecond
	defer func() { wsPingInterval = oldInterval }()

	sessions := session.NewCache(time.Minute, func(ctx context.Context, token string) (session.Session, error) {
		return session.Session{UserID: "u1"}, nil
	})

	hub := realtime.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(ServeWS(hub, sessions))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=tok"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Keep sending until the reader has seen enough; sends before the hub
	// registration lands are dropped, which is fine.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				hub.Send("u1", realtime.Event{Type: realtime.EventMessage})
				time.Sleep(200 * time.Microsecond)
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received := 0; received < 100; received++ {
		var ev realtime.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read after %d events: %v", received, err)
		}
		if ev.Type != realtime.EventMessage {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	}
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	sessions := session.NewCache(time.Minute, func(ctx context.Context, token string) (session.Session, error) {
		return session.Session{UserID: "u1"}, nil
	})
	hub := realtime.NewHub()

	srv := httptest.NewServer(ServeWS(hub, sessions))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake failure without token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %+v", resp)
	}
}
