package bus

import (
	"context"

	"github.com/gilshabo/tic-tac-two/internal/entity"
)

const envelopeTypeState = "state"

// Envelope is the unit of cross-process propagation: the full updated room
// state plus the identity of the publishing process. OriginID lets a
// subscriber drop its own publications; EventID is carried for traceability
// only, nothing deduplicates on it.
type Envelope struct {
	Type     string       `json:"type"`
	State    *entity.Room `json:"state"`
	OriginID string       `json:"origin_id"`
	EventID  string       `json:"event_id"`
}

// Handler receives the state embedded in a foreign envelope.
type Handler func(room *entity.Room)

type ChangeBus interface {
	Publish(ctx context.Context, room *entity.Room) error
	Subscribe(ctx context.Context, roomID string, handler Handler) error
	OriginID() string
}
