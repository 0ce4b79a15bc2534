package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// statusInterval is how often the live feed pushes a snapshot. Timecode
// moves every tick; 10Hz is enough for a readout without flooding clients.
const statusInterval = 100 * time.Millisecond

// StatusHandler pushes engine status snapshots over a websocket.
type StatusHandler struct {
	snapshot func() any
	upgrader websocket.Upgrader
}

// NewStatusHandler creates a websocket status feed. snapshot is called once
// per push and must be safe to call from any goroutine.
func NewStatusHandler(snapshot func() any) *StatusHandler {
	return &StatusHandler{
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			// The monitor page may be served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("status feed: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Discard client messages so pings and close frames get processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(h.snapshot()); err != nil {
			return
		}
	}
}
