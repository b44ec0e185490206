package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/valpere/glosstran/internal/controller"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// latestSnapshot is a one-slot mailbox. Offering replaces an undelivered
// snapshot unless that one is newer, so a slow reader skips intermediate
// states but always ends on the newest.
type latestSnapshot struct {
	ch chan controller.Snapshot
}

func newLatestSnapshot() *latestSnapshot {
	return &latestSnapshot{ch: make(chan controller.Snapshot, 1)}
}

func (l *latestSnapshot) offer(snap controller.Snapshot) {
	for {
		select {
		case l.ch <- snap:
			return
		default:
		}
		select {
		case old := <-l.ch:
			if old.Version > snap.Version {
				snap = old
			}
		default:
		}
	}
}

func (l *latestSnapshot) updates() <-chan controller.Snapshot { return l.ch }

// handleEvents streams a "state" message with the current snapshot on
// connect and after every change. A client that falls behind receives the
// newest state rather than every intermediate one.
func (s *Server) handleEvents(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	pending := newLatestSnapshot()
	unsubscribe := s.ctl.Subscribe(pending.offer)
	defer unsubscribe()

	done := make(chan struct{})
	go s.readPump(conn, done)

	initial := s.ctl.Snapshot()
	if err := writeMessage(conn, wsMessage{Type: "state", Payload: initial}); err != nil {
		return nil
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	last := initial.Version
	for {
		select {
		case <-done:
			return nil
		case snap := <-pending.updates():
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			if err := writeMessage(conn, wsMessage{Type: "state", Payload: snap}); err != nil {
				s.logger.Debug().Err(err).Msg("event stream closed")
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readPump drains client frames so control messages are processed, and
// closes done when the peer goes away.
func (s *Server) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg wsMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
