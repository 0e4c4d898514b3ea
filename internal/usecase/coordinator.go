package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gilshabo/tic-tac-two/internal/apperror"
	"github.com/gilshabo/tic-tac-two/internal/bus"
	"github.com/gilshabo/tic-tac-two/internal/entity"
	"github.com/gilshabo/tic-tac-two/internal/registry"
	"github.com/gilshabo/tic-tac-two/internal/repository"
	"github.com/gilshabo/tic-tac-two/internal/tictactoe"
)

var (
	DefaultJoinRetry = RetryPolicy{Attempts: 5, Backoff: 80 * time.Millisecond}
	DefaultMoveRetry = RetryPolicy{Attempts: 8, Backoff: 100 * time.Millisecond}
)

type roomRepo interface {
	Get(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, id string, mutate repository.MutateFunc) (*entity.Room, error)
}

type changeBus interface {
	Publish(ctx context.Context, room *entity.Room) error
	Subscribe(ctx context.Context, roomID string, handler bus.Handler) error
}

type connections interface {
	Add(conn registry.Connection, session registry.Session)
	Session(conn registry.Connection) (registry.Session, bool)
	Remove(conn registry.Connection)
	Broadcast(roomID string, room *entity.Room)
}

// JoinResult is the reply to a successful join: the seat granted to the
// requesting connection and the full room state at that moment.
type JoinResult struct {
	Room   *entity.Room
	Seat   string
	Player *entity.Player
}

// Coordinator reconciles local intent with remote state: it loads the
// current record, runs the game engine, commits via an optimistic
// transaction, retries lost races with backoff, and propagates accepted
// changes both locally and over the bus.
//
// Updates reach local clients only through the direct Broadcast here; the
// bus carries them to other processes, and the bus layer drops this
// process's own echo, so no client sees the same change twice.
type Coordinator struct {
	logger *slog.Logger

	rooms roomRepo
	bus   changeBus
	conns connections

	joinRetry RetryPolicy
	moveRetry RetryPolicy

	subsMu     sync.Mutex
	subscribed map[string]bool
}

func NewCoordinator(logger *slog.Logger, rooms roomRepo, changeBus changeBus, conns connections, joinRetry, moveRetry RetryPolicy) *Coordinator {
	return &Coordinator{
		logger: logger.With("component", "coordinator"),

		rooms: rooms,
		bus:   changeBus,
		conns: conns,

		joinRetry: joinRetry,
		moveRetry: moveRetry,

		subscribed: make(map[string]bool),
	}
}

// Join seats the named player in the room, creating the record on first
// join. Rejoining under an already-seated display name reclaims that seat
// without mutating the record. Lost write races are retried up to the join
// bound; seats-full and game-finished are terminal.
func (that *Coordinator) Join(ctx context.Context, roomID, name string, conn registry.Connection) (*JoinResult, error) {
	log := that.logger.With("method", "Join", "roomID", roomID)

	var (
		room    *entity.Room
		seat    string
		player  *entity.Player
		changed bool
	)

	err := runWithRetry(ctx, that.joinRetry, func() error {
		seat, player, changed = "", nil, false

		updated, err := that.rooms.Update(ctx, roomID, func(current *entity.Room) (*entity.Room, error) {
			if current == nil {
				current = tictactoe.NewRoom(roomID)
			}

			if current.IsFinished() {
				return nil, apperror.ErrGameFinished
			}

			if existing, ok := current.SeatByName(name); ok {
				seat = existing
				player = current.Seats[existing]

				// reclaiming a seat commits nothing
				return nil, nil
			}

			player = &entity.Player{ID: uuid.NewString(), Name: name}

			assigned, err := tictactoe.AssignSeat(current, player)
			if err != nil {
				return nil, err
			}

			seat = assigned
			changed = true

			return current, nil
		})
		if err != nil {
			return err
		}

		room = updated

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	that.conns.Add(conn, registry.Session{
		RoomID:   roomID,
		Seat:     seat,
		Name:     name,
		PlayerID: player.ID,
	})

	if err = that.ensureSubscribed(ctx, roomID); err != nil {
		return nil, fmt.Errorf("failed to attach to room channel: %w", err)
	}

	if changed {
		that.conns.Broadcast(roomID, room)

		if err = that.bus.Publish(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to announce join: %w", err)
		}
	}

	log.Info("player seated", "seat", seat, "version", room.Version)

	return &JoinResult{Room: room, Seat: seat, Player: player}, nil
}

// Move applies the connection's move to its room. Engine violations are
// terminal and never retried; only lost write races loop, up to the move
// bound. On commit the new state goes to local connections directly and to
// other processes over the bus.
func (that *Coordinator) Move(ctx context.Context, conn registry.Connection, row, col int) (*entity.Room, error) {
	session, ok := that.conns.Session(conn)
	if !ok {
		return nil, apperror.ErrNotInRoom
	}

	log := that.logger.With("method", "Move", "roomID", session.RoomID, "seat", session.Seat)

	var room *entity.Room

	err := runWithRetry(ctx, that.moveRetry, func() error {
		updated, err := that.rooms.Update(ctx, session.RoomID, func(current *entity.Room) (*entity.Room, error) {
			if current == nil {
				return nil, apperror.ErrRoomNotFound
			}

			if err := tictactoe.ApplyMove(current, session.Seat, row, col); err != nil {
				return nil, err
			}

			return current, nil
		})
		if err != nil {
			return err
		}

		room = updated

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	that.conns.Broadcast(session.RoomID, room)

	if err = that.bus.Publish(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to announce move: %w", err)
	}

	log.Info("move accepted", "row", row, "col", col, "version", room.Version)

	return room, nil
}

// Leave drops the connection's local bookkeeping. The room record is never
// mutated on disconnect.
func (that *Coordinator) Leave(conn registry.Connection) {
	that.conns.Remove(conn)
}

// ensureSubscribed attaches to the room's bus channel the first time this
// process sees the room. The subscription is kept for the process lifetime;
// foreign envelopes fan out to the local connections of that room.
func (that *Coordinator) ensureSubscribed(ctx context.Context, roomID string) error {
	that.subsMu.Lock()
	defer that.subsMu.Unlock()

	if that.subscribed[roomID] {
		return nil
	}

	err := that.bus.Subscribe(ctx, roomID, func(room *entity.Room) {
		that.conns.Broadcast(roomID, room)
	})
	if err != nil {
		return err
	}

	that.subscribed[roomID] = true

	return nil
}
