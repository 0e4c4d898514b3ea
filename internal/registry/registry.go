package registry

import (
	"log/slog"
	"sync"

	"github.com/gilshabo/tic-tac-two/internal/entity"
)

// Connection is the send side of one locally connected client.
type Connection interface {
	SendState(room *entity.Room) error
}

// Session records which room and seat a local connection belongs to.
type Session struct {
	RoomID   string
	Seat     string
	Name     string
	PlayerID string
}

// Registry is per-process bookkeeping of local connections. It is private
// to the process and needs no cross-process coordination.
type Registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	rooms    map[string]map[Connection]struct{}
	sessions map[Connection]Session
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With("component", "registry"),
		rooms:    make(map[string]map[Connection]struct{}),
		sessions: make(map[Connection]Session),
	}
}

// Add binds a connection to a room after a successful join. Re-adding an
// already-registered connection replaces its session.
func (that *Registry) Add(conn Connection, session Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if previous, ok := that.sessions[conn]; ok && previous.RoomID != session.RoomID {
		that.dropLocked(conn, previous.RoomID)
	}

	if that.rooms[session.RoomID] == nil {
		that.rooms[session.RoomID] = make(map[Connection]struct{})
	}

	that.rooms[session.RoomID][conn] = struct{}{}
	that.sessions[conn] = session
}

// Session returns the room membership of a connection, if any.
func (that *Registry) Session(conn Connection) (Session, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[conn]

	return session, ok
}

// Remove drops a connection and its room membership, regardless of game
// status. Called when the underlying connection closes.
func (that *Registry) Remove(conn Connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[conn]
	if !ok {
		return
	}

	that.dropLocked(conn, session.RoomID)
	delete(that.sessions, conn)
}

func (that *Registry) dropLocked(conn Connection, roomID string) {
	if conns, ok := that.rooms[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(that.rooms, roomID)
		}
	}
}

// Broadcast fans the state out to every local connection in the room.
// Individual send failures are logged and do not abort the rest.
func (that *Registry) Broadcast(roomID string, room *entity.Room) {
	log := that.logger.With("method", "Broadcast", "roomID", roomID)

	that.mu.RLock()
	conns := make([]Connection, 0, len(that.rooms[roomID]))
	for conn := range that.rooms[roomID] {
		conns = append(conns, conn)
	}
	that.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.SendState(room); err != nil {
			log.Warn("failed to send state update", "error", err)
		}
	}
}
