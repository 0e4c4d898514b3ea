package entity

// Player identifies a seat occupant: a generated id plus the display name
// the player joined under.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
