package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const writeTimeout = 2 * time.Second

// Hub keeps the connected clients and broadcasts snapshots to all of them.
// Clients only listen, anything they send is read and dropped.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mutex   sync.RWMutex
	clients map[*SafeWriter]struct{}
	closed  bool
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*SafeWriter]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the client until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	writer := NewSafeWriter(conn)
	if !h.add(writer) {
		_ = writer.Close()
		return
	}
	h.logger.Info("telemetry client connected", zap.String("remote", r.RemoteAddr))

	go func() {
		defer h.remove(writer)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("telemetry client read failed", zap.Error(err))
				}
				return
			}
		}
	}()
}

func (h *Hub) add(writer *SafeWriter) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.closed {
		return false
	}
	h.clients[writer] = struct{}{}
	return true
}

func (h *Hub) remove(writer *SafeWriter) {
	h.mutex.Lock()
	_, ok := h.clients[writer]
	delete(h.clients, writer)
	h.mutex.Unlock()

	if ok {
		_ = writer.Close()
		h.logger.Info("telemetry client disconnected")
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

// Broadcast sends the snapshot to every client, failing clients are dropped.
// The returned error reports how many writes failed.
func (h *Hub) Broadcast(snapshot Snapshot) error {
	h.mutex.RLock()
	writers := make([]*SafeWriter, 0, len(h.clients))
	for writer := range h.clients {
		writers = append(writers, writer)
	}
	h.mutex.RUnlock()

	failed := 0
	for _, writer := range writers {
		if err := writer.WriteJSON(snapshot, writeTimeout); err != nil {
			h.logger.Debug("telemetry write failed", zap.Error(err))
			h.remove(writer)
			failed++
		}
	}

	if failed > 0 {
		return errors.Errorf("telemetry: %d of %d clients dropped", failed, len(writers))
	}
	return nil
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mutex.Lock()
	h.closed = true
	writers := make([]*SafeWriter, 0, len(h.clients))
	for writer := range h.clients {
		writers = append(writers, writer)
	}
	clear(h.clients)
	h.mutex.Unlock()

	for _, writer := range writers {
		_ = writer.Close()
	}
}
