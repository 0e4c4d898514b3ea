package websocket

import "github.com/gilshabo/tic-tac-two/internal/entity"

// Message is one inbound client request, a single JSON object per frame.
type Message struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Row    *int   `json:"row,omitempty"`
	Col    *int   `json:"col,omitempty"`
}

// Response is one outbound message to a client.
type Response struct {
	Type    string       `json:"type"`
	Seat    string       `json:"seat,omitempty"`
	You     *You         `json:"you,omitempty"`
	State   *entity.Room `json:"state,omitempty"`
	Message string       `json:"message,omitempty"`
}

type You struct {
	Name string `json:"name"`
}

const (
	messageTypeJoin = "join"
	messageTypeMove = "move"
	messageTypePing = "ping"

	responseTypeAssigned = "assigned"
	responseTypeUpdate   = "update"
	responseTypeError    = "error"
	responseTypeInfo     = "info"
	responseTypePong     = "pong"
)
