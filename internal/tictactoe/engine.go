package tictactoe

import (
	"fmt"

	"github.com/gilshabo/tic-tac-two/internal/apperror"
	"github.com/gilshabo/tic-tac-two/internal/entity"
)

const boardSize = 3

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// NewRoom returns the initial waiting state for a room: empty board,
// no seats taken, X to move first, version 0.
func NewRoom(id string) *entity.Room {
	return &entity.Room{
		ID:     id,
		Seats:  make(map[string]*entity.Player),
		Turn:   entity.SeatX,
		Status: entity.StatusWaiting,
	}
}

// AssignSeat binds the player to the first free seat and returns its label.
// Once both seats are filled the game starts. Every accepted assignment
// bumps the version by exactly one.
func AssignSeat(room *entity.Room, player *entity.Player) (string, error) {
	seat, ok := room.FreeSeat()
	if !ok {
		return "", apperror.ErrRoomFull
	}

	if room.Seats == nil {
		room.Seats = make(map[string]*entity.Player)
	}

	room.Seats[seat] = player

	if _, free := room.FreeSeat(); !free {
		room.Status = entity.StatusRunning
	}

	room.Version++

	return seat, nil
}

// ValidateMove checks a move without applying it. Violations are terminal:
// retrying with the same inputs always fails the same way.
func ValidateMove(room *entity.Room, seat string, row, col int) error {
	switch {
	case room.IsFinished():
		return apperror.ErrGameFinished
	case !room.IsRunning():
		return apperror.ErrGameNotStarted
	}

	if row < 0 || row >= boardSize || col < 0 || col >= boardSize {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrOutOfBounds, row, col)
	}

	if room.Turn != seat {
		return apperror.ErrNotYourTurn
	}

	if room.Board[cellIndex(row, col)] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// ApplyMove validates and applies a move: marks the cell, recomputes the
// outcome, flips the turn or finishes the game, and bumps the version.
func ApplyMove(room *entity.Room, seat string, row, col int) error {
	if err := ValidateMove(room, seat, row, col); err != nil {
		return err
	}

	room.Board[cellIndex(row, col)] = seat

	switch winner := CheckWinner(room.Board); winner {
	case entity.SeatX, entity.SeatO, entity.WinnerDraw:
		room.Winner = winner
		room.Status = entity.StatusFinished
		room.Turn = ""
	default:
		room.Turn = toggleSeat(seat)
	}

	room.Version++

	return nil
}

// CheckWinner returns the winning seat, "draw" when the board is full with
// no winner, or the empty string while the game is still open.
func CheckWinner(board [9]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return ""
		}
	}

	return entity.WinnerDraw
}

func cellIndex(row, col int) int {
	return row*boardSize + col
}

func toggleSeat(seat string) string {
	if seat == entity.SeatX {
		return entity.SeatO
	}
	return entity.SeatX
}
