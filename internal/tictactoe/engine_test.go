package tictactoe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilshabo/tic-tac-two/internal/apperror"
	"github.com/gilshabo/tic-tac-two/internal/entity"
)

func newRunningRoom(t *testing.T) *entity.Room {
	t.Helper()

	room := NewRoom("room-1")

	_, err := AssignSeat(room, &entity.Player{ID: "p1", Name: "Alice"})
	require.NoError(t, err)

	_, err = AssignSeat(room, &entity.Player{ID: "p2", Name: "Bob"})
	require.NoError(t, err)

	return room
}

func TestNewRoom(t *testing.T) {
	// Given: a fresh room
	room := NewRoom("room-1")

	// Then: it is waiting, empty, X to move, version 0
	assert.Equal(t, entity.StatusWaiting, room.Status)
	assert.Equal(t, entity.SeatX, room.Turn)
	assert.Empty(t, room.Seats)
	assert.EqualValues(t, 0, room.Version)

	for _, cell := range room.Board {
		assert.Equal(t, entity.EmptyCell, cell)
	}
}

func TestAssignSeat(t *testing.T) {
	t.Run("assigns X then O and starts the game", func(t *testing.T) {
		// Given: an empty room
		room := NewRoom("room-1")

		// When: two players join in order
		first, err := AssignSeat(room, &entity.Player{ID: "p1", Name: "Alice"})
		require.NoError(t, err)

		second, err := AssignSeat(room, &entity.Player{ID: "p2", Name: "Bob"})
		require.NoError(t, err)

		// Then: seats go out X first, the game starts, version advanced twice
		assert.Equal(t, entity.SeatX, first)
		assert.Equal(t, entity.SeatO, second)
		assert.Equal(t, entity.StatusRunning, room.Status)
		assert.EqualValues(t, 2, room.Version)
	})

	t.Run("rejects a third player", func(t *testing.T) {
		// Given: a room with both seats taken
		room := newRunningRoom(t)
		versionBefore := room.Version

		// When: a third player asks for a seat
		_, err := AssignSeat(room, &entity.Player{ID: "p3", Name: "Carol"})

		// Then: the room is full and nothing changed
		require.ErrorIs(t, err, apperror.ErrRoomFull)
		assert.EqualValues(t, versionBefore, room.Version)
		assert.Len(t, room.Seats, 2)
	})
}

func TestApplyMove_RowWin(t *testing.T) {
	// Given: a running room
	room := newRunningRoom(t)

	// When: X takes the top row while O plays the middle row
	moves := []struct {
		seat     string
		row, col int
	}{
		{entity.SeatX, 0, 0},
		{entity.SeatO, 1, 0},
		{entity.SeatX, 0, 1},
		{entity.SeatO, 1, 1},
		{entity.SeatX, 0, 2},
	}

	for _, move := range moves {
		require.NoError(t, ApplyMove(room, move.seat, move.row, move.col))
	}

	// Then: X wins and the game is finished
	assert.Equal(t, entity.StatusFinished, room.Status)
	assert.Equal(t, entity.SeatX, room.Winner)
	assert.Empty(t, room.Turn)
	assert.EqualValues(t, 7, room.Version) // 2 joins + 5 moves
}

func TestApplyMove_Draw(t *testing.T) {
	// Given: a running room
	room := newRunningRoom(t)

	// When: the board fills without a winner
	moves := []struct {
		seat     string
		row, col int
	}{
		{entity.SeatX, 0, 0},
		{entity.SeatO, 0, 1},
		{entity.SeatX, 0, 2},
		{entity.SeatO, 1, 1},
		{entity.SeatX, 1, 0},
		{entity.SeatO, 1, 2},
		{entity.SeatX, 2, 1},
		{entity.SeatO, 2, 0},
		{entity.SeatX, 2, 2},
	}

	for _, move := range moves {
		require.NoError(t, ApplyMove(room, move.seat, move.row, move.col))
	}

	// Then: the game ends in a draw
	assert.Equal(t, entity.StatusFinished, room.Status)
	assert.Equal(t, entity.WinnerDraw, room.Winner)
}

func TestApplyMove_Violations(t *testing.T) {
	t.Run("waiting room rejects moves", func(t *testing.T) {
		// Given: a room with a single player
		room := NewRoom("room-1")
		_, err := AssignSeat(room, &entity.Player{ID: "p1", Name: "Alice"})
		require.NoError(t, err)

		// When: X moves before the game starts
		err = ApplyMove(room, entity.SeatX, 0, 0)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})

	t.Run("occupied cell leaves state untouched", func(t *testing.T) {
		// Given: a running room where X took (0,0)
		room := newRunningRoom(t)
		require.NoError(t, ApplyMove(room, entity.SeatX, 0, 0))
		versionBefore := room.Version

		// When: O tries the same cell
		err := ApplyMove(room, entity.SeatO, 0, 0)

		// Then: the move is rejected and nothing mutated
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.EqualValues(t, versionBefore, room.Version)
		assert.Equal(t, entity.SeatO, room.Turn)

		// And: a subsequent legal O move is accepted
		require.NoError(t, ApplyMove(room, entity.SeatO, 1, 1))
		assert.EqualValues(t, versionBefore+1, room.Version)
	})

	t.Run("wrong turn", func(t *testing.T) {
		room := newRunningRoom(t)

		err := ApplyMove(room, entity.SeatO, 0, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("out of bounds", func(t *testing.T) {
		room := newRunningRoom(t)

		err := ApplyMove(room, entity.SeatX, 3, 0)

		require.ErrorIs(t, err, apperror.ErrOutOfBounds)
	})

	t.Run("finished game rejects moves", func(t *testing.T) {
		// Given: a finished room
		room := newRunningRoom(t)
		room.Status = entity.StatusFinished
		room.Winner = entity.SeatX

		// When: anyone moves
		err := ApplyMove(room, entity.SeatX, 2, 2)

		// Then: the game is over
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})
}

func TestApplyMove_SerializationRoundTrip(t *testing.T) {
	// Given: a running room and its serialized copy
	original := newRunningRoom(t)

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var restored entity.Room
	require.NoError(t, json.Unmarshal(raw, &restored))

	// When: the same legal move is applied to both
	require.NoError(t, ApplyMove(original, entity.SeatX, 1, 1))
	require.NoError(t, ApplyMove(&restored, entity.SeatX, 1, 1))

	// Then: both states are equal
	assert.Equal(t, original, &restored)
}

func TestCheckWinner(t *testing.T) {
	t.Run("column win", func(t *testing.T) {
		board := [9]string{
			"X", "O", "",
			"X", "O", "",
			"X", "", "",
		}

		assert.Equal(t, entity.SeatX, CheckWinner(board))
	})

	t.Run("diagonal win", func(t *testing.T) {
		board := [9]string{
			"O", "X", "",
			"X", "O", "",
			"", "", "O",
		}

		assert.Equal(t, entity.SeatO, CheckWinner(board))
	})

	t.Run("open board", func(t *testing.T) {
		board := [9]string{"X"}

		assert.Equal(t, "", CheckWinner(board))
	})
}
