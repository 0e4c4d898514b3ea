package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gilshabo/tic-tac-two/internal/entity"
	"github.com/gilshabo/tic-tac-two/internal/registry"
	"github.com/gilshabo/tic-tac-two/internal/usecase"
)

type coordinator interface {
	Join(ctx context.Context, roomID, name string, conn registry.Connection) (*usecase.JoinResult, error)
	Move(ctx context.Context, conn registry.Connection, row, col int) (*entity.Room, error)
	Leave(conn registry.Connection)
}

type Server struct {
	logger      *slog.Logger
	coordinator coordinator
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, cl *client, msg *Message) error
}

func New(logger *slog.Logger, coordinator coordinator) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[messageTypeJoin] = server.handleJoin
	server.handlers[messageTypeMove] = server.handleMove
	server.handlers[messageTypePing] = server.handlePing

	return server
}

// Start - starts the WebSocket server. The context is the process lifetime;
// it anchors every room subscription opened on behalf of joining clients.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections idle between moves, no read deadline
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection", "remote", r.RemoteAddr)

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := newClient(conn)

	defer func() {
		that.coordinator.Leave(cl)
		_ = conn.Close()
		log.Info("connection closed")
	}()

	log.Info("connection established")

	if err = that.handleMessages(ctx, cl); err != nil {
		log.Debug("read loop ended", "error", err)
	}
}

// handleMessages - processes requests from one client until it disconnects.
// A bad request produces an error message and leaves the connection usable;
// only a transport failure ends the loop.
func (that *Server) handleMessages(ctx context.Context, cl *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var msg Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			log.Warn("malformed payload", "error", err)

			if err = that.sendError(cl, "malformed message"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[msg.Type]
		if !ok {
			log.Warn("unrecognized message type", "type", msg.Type)

			if err = that.sendError(cl, fmt.Sprintf("unrecognized message type %q", msg.Type)); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, cl, &msg); err != nil {
			return err
		}
	}
}

func (that *Server) handleJoin(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleJoin", "roomID", msg.RoomID)

	if msg.RoomID == "" || msg.Name == "" {
		return that.sendError(cl, "join requires room_id and name")
	}

	result, err := that.coordinator.Join(ctx, msg.RoomID, msg.Name, cl)
	if err != nil {
		log.Warn("join rejected", "error", err)
		return that.sendError(cl, userMessage(err))
	}

	if err = cl.send(Response{
		Type: responseTypeAssigned,
		Seat: result.Seat,
		You:  &You{Name: result.Player.Name},
	}); err != nil {
		return err
	}

	return cl.SendState(result.Room)
}

func (that *Server) handleMove(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleMove")

	if msg.Row == nil || msg.Col == nil {
		return that.sendError(cl, "move requires row and col")
	}

	// the acting seat is implied by this connection's registered identity;
	// the accepted state reaches the client through the room fan-out
	if _, err := that.coordinator.Move(ctx, cl, *msg.Row, *msg.Col); err != nil {
		log.Warn("move rejected", "error", err)
		return that.sendError(cl, userMessage(err))
	}

	return nil
}

func (that *Server) handlePing(_ context.Context, cl *client, _ *Message) error {
	return cl.send(Response{Type: responseTypePong})
}

func (that *Server) sendError(cl *client, message string) error {
	return cl.send(Response{Type: responseTypeError, Message: message})
}

// userMessage strips internal wrapping from errors shown to clients while
// keeping the sentinel's own wording.
func userMessage(err error) string {
	var unwrapped error
	for current := err; current != nil; current = errors.Unwrap(current) {
		unwrapped = current
	}

	return unwrapped.Error()
}
