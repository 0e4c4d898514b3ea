package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gilshabo/tic-tac-two/internal/apperror"
	"github.com/gilshabo/tic-tac-two/internal/entity"
)

// MutateFunc computes the next room state from the current one. current is
// nil when no record exists yet. Returning a nil next state commits nothing
// but still hands the current state back to the caller. Returning an error
// aborts the transaction without writing.
type MutateFunc func(current *entity.Room) (next *entity.Room, err error)

type RoomRepository interface {
	Get(ctx context.Context, id string) (*entity.Room, error)
	Save(ctx context.Context, room *entity.Room) error
	Update(ctx context.Context, id string, mutate MutateFunc) (*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) Get(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// Save overwrites the record unconditionally. Mutation of an existing room
// must go through Update; Save exists for record seeding only.
func (that *dbRoom) Save(ctx context.Context, room *entity.Room) error {
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKey(room.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

// Update runs mutate inside an optimistic transaction on the room key.
// Any write to the key between the read and the commit, by any client on
// any process, aborts the commit; that abort surfaces as ErrStateConflict
// and the caller is expected to re-read and retry.
func (that *dbRoom) Update(ctx context.Context, id string, mutate MutateFunc) (*entity.Room, error) {
	key := roomKey(id)

	var result *entity.Room

	txn := func(tx *redis.Tx) error {
		current, err := readRoom(ctx, tx, key)
		if err != nil {
			return err
		}

		next, err := mutate(current)
		if err != nil {
			return err
		}

		if next == nil {
			result = current
			return nil
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("could not marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = next

		return nil
	}

	err := that.client.Watch(ctx, txn, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, apperror.ErrStateConflict
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

func readRoom(ctx context.Context, tx *redis.Tx, key string) (*entity.Room, error) {
	response, err := tx.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read room: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func roomKey(id string) string {
	return "room:" + id
}
