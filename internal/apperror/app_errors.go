package apperror

import "errors"

var (
	// Terminal errors. Reported to the caller once, never retried.
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotStarted = errors.New("game is not started")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrOutOfBounds    = errors.New("cell is out of bounds")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotInRoom      = errors.New("connection is not in a room")

	// ErrStateConflict signals a lost optimistic-transaction race.
	// It is a retry signal, not a failure.
	ErrStateConflict = errors.New("room state changed concurrently")

	// ErrTooManyConflicts is returned once the retry bound is exhausted.
	// The client may safely re-issue the request.
	ErrTooManyConflicts = errors.New("too many concurrent updates, try again")
)
