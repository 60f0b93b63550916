package pipeline

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatusMessage is one JSON event pushed to connected status clients.
type StatusMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// FramePayload reports the demodulator's counters and state at a frame
// event.
type FramePayload struct {
	State             string `json:"state"`
	TotalFramesRead    uint32  `json:"totalFramesRead"`
	TotalFramesDesync  uint32  `json:"totalFramesDesync"`
}

// StatusHub broadcasts demodulator status over WebSocket to any number of
// connected monitoring clients, for live display of sync state and frame
// counters independent of the decode thread.
type StatusHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewStatusHub constructs an empty hub.
func NewStatusHub() *StatusHub {
	return &StatusHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers it as a
// status client until it disconnects.
func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("status hub upgrade error: %v", err)
		return
	}
	h.addClient(conn)
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StatusHub) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	log.Printf("status client connected (%d total)", len(h.clients))
}

func (h *StatusHub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
	log.Printf("status client disconnected (%d remaining)", len(h.clients))
}

// Broadcast sends msg to every connected client, dropping any that error.
func (h *StatusHub) Broadcast(msg StatusMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("status hub marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("status hub write error: %v", err)
			go h.removeClient(conn)
		}
	}
}

// BroadcastFrame reports a frame event (state and both frame counters) to
// all clients. The demodulator only signals successful frames, so desyncs
// show up as a changed TotalFramesDesync on the next successful frame.
func (h *StatusHub) BroadcastFrame(state string, framesRead, framesDesync uint32) {
	h.Broadcast(StatusMessage{
		Type: "frame",
		Payload: FramePayload{
			State:             state,
			TotalFramesRead:   framesRead,
			TotalFramesDesync: framesDesync,
		},
	})
}
