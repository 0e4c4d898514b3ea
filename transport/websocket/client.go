package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gilshabo/tic-tac-two/internal/entity"
)

// client wraps one WebSocket connection. Writes are serialized by a mutex
// because fan-out and the request loop may send concurrently.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn}
}

func (that *client) send(response Response) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// SendState delivers a full-state update. Updates are idempotent by
// replacement, so an occasional duplicate is harmless to the client.
func (that *client) SendState(room *entity.Room) error {
	return that.send(Response{Type: responseTypeUpdate, State: room})
}
