// Package progress streams batch-level progress of long simulation
// runs to WebSocket subscribers, giving the presentation layer an
// observable point between batches of a heavy run.
package progress

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Update is one progress event for a run.
type Update struct {
	RunID    string `json:"run_id"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Finished bool   `json:"finished"`
}

// Hub fans progress updates out to per-run WebSocket subscribers.
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*websocket.Conn]struct{} // keyed by run_id
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Progress is read-only telemetry; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Subscribe upgrades the request to a WebSocket and registers it for
// updates on runID until the client disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, runID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.subs[runID] == nil {
		h.subs[runID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[runID][conn] = struct{}{}
	h.mu.Unlock()

	// Drain reads to observe the close frame; subscribers never send
	// application data.
	go func() {
		defer h.unsubscribe(runID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}

// Publish sends an update to every subscriber of the run. Broken
// connections are dropped; a final update also closes the run's
// subscriber set.
func (h *Hub) Publish(u Update) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[u.RunID]))
	for conn := range h.subs[u.RunID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(u); err != nil {
			h.unsubscribe(u.RunID, conn)
		}
	}

	if u.Finished {
		h.closeRun(u.RunID)
	}
}

// Subscribers returns the current subscriber count for a run.
func (h *Hub) Subscribers(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[runID])
}

func (h *Hub) unsubscribe(runID string, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.subs[runID]; ok {
		if _, ok := set[conn]; ok {
			delete(set, conn)
			conn.Close()
		}
		if len(set) == 0 {
			delete(h.subs, runID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) closeRun(runID string) {
	h.mu.Lock()
	set := h.subs[runID]
	delete(h.subs, runID)
	h.mu.Unlock()

	for conn := range set {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
		conn.Close()
	}
}
