package entity

const (
	StatusWaiting  = "waiting"
	StatusRunning  = "running"
	StatusFinished = "finished"

	SeatX = "X"
	SeatO = "O"

	WinnerDraw = "draw"

	EmptyCell = ""
)

// Room is the canonical, versioned record for one game. The copy held by any
// process is transient; the record store owns the state.
type Room struct {
	ID      string             `json:"id"`
	Board   [9]string          `json:"board"`
	Seats   map[string]*Player `json:"seats"`
	Turn    string             `json:"turn"`
	Status  string             `json:"status"`
	Winner  string             `json:"winner,omitempty"`
	Version int64              `json:"version"`
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsRunning() bool {
	return that.Status == StatusRunning
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// SeatByName returns the seat already bound to the given display name.
// Rejoin identity is name-keyed within a room.
func (that *Room) SeatByName(name string) (string, bool) {
	for seat, player := range that.Seats {
		if player != nil && player.Name == name {
			return seat, true
		}
	}

	return "", false
}

// FreeSeat returns the first unoccupied seat, X before O.
func (that *Room) FreeSeat() (string, bool) {
	for _, seat := range []string{SeatX, SeatO} {
		if _, taken := that.Seats[seat]; !taken {
			return seat, true
		}
	}

	return "", false
}
