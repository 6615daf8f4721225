package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single WebSocket write may block.
const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// HandposeHandler streams pipeline updates to WebSocket clients, one JSON
// message per processed frame.
type HandposeHandler struct {
	feed Feed
}

// NewHandposeHandler creates a new HandposeHandler reading from feed.
func NewHandposeHandler(feed Feed) *HandposeHandler {
	return &HandposeHandler{feed: feed}
}

// ServeHTTP upgrades the request and forwards updates until the client
// disconnects or the feed closes.
func (h *HandposeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	// Reading is only used to notice the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case u, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(u); err != nil {
				log.Printf("websocket write error: %v", err)
				return
			}
		}
	}
}
