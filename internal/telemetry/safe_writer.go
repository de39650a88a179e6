package telemetry

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeWriter serializes writes on a websocket connection
type SafeWriter struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

// WriteJSON writes v as a text message, giving up after timeout when positive
func (w *SafeWriter) WriteJSON(v any, timeout time.Duration) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if timeout > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return w.conn.WriteJSON(v)
}

func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	_ = w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return w.conn.Close()
}
