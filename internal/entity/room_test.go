package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomStatusMethods(t *testing.T) {
	t.Run("IsWaiting returns true when room status is waiting", func(t *testing.T) {
		room := &Room{Status: StatusWaiting}

		assert.True(t, room.IsWaiting())
		assert.False(t, room.IsRunning())
		assert.False(t, room.IsFinished())
	})

	t.Run("IsRunning returns true when room status is running", func(t *testing.T) {
		room := &Room{Status: StatusRunning}

		assert.True(t, room.IsRunning())
	})

	t.Run("IsFinished returns true when room status is finished", func(t *testing.T) {
		room := &Room{Status: StatusFinished}

		assert.True(t, room.IsFinished())
	})
}

func TestRoomSeatByName(t *testing.T) {
	t.Run("finds the seat bound to a name", func(t *testing.T) {
		// Given: a room with both seats taken
		room := &Room{
			Seats: map[string]*Player{
				SeatX: {ID: "p1", Name: "Alice"},
				SeatO: {ID: "p2", Name: "Bob"},
			},
		}

		// When: looking up an occupant by name
		seat, ok := room.SeatByName("Bob")

		// Then: the bound seat comes back
		assert.True(t, ok)
		assert.Equal(t, SeatO, seat)
	})

	t.Run("reports unknown names", func(t *testing.T) {
		room := &Room{Seats: map[string]*Player{SeatX: {ID: "p1", Name: "Alice"}}}

		_, ok := room.SeatByName("Carol")

		assert.False(t, ok)
	})
}

func TestRoomFreeSeat(t *testing.T) {
	t.Run("X goes first", func(t *testing.T) {
		room := &Room{Seats: map[string]*Player{}}

		seat, ok := room.FreeSeat()

		assert.True(t, ok)
		assert.Equal(t, SeatX, seat)
	})

	t.Run("O when X is taken", func(t *testing.T) {
		room := &Room{Seats: map[string]*Player{SeatX: {ID: "p1", Name: "Alice"}}}

		seat, ok := room.FreeSeat()

		assert.True(t, ok)
		assert.Equal(t, SeatO, seat)
	})

	t.Run("none when full", func(t *testing.T) {
		room := &Room{
			Seats: map[string]*Player{
				SeatX: {ID: "p1", Name: "Alice"},
				SeatO: {ID: "p2", Name: "Bob"},
			},
		}

		_, ok := room.FreeSeat()

		assert.False(t, ok)
	})
}
