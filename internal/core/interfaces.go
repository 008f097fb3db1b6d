package core

import (
	"context"

	"github.com/dkraev/parley/internal/domain"
)

type SessionID string

// RoomService, MessageService and ParticipantService are the community
// backend's surface as this gateway sees it. The backend owns persistence
// and the authoritative permission checks; errors come back classified into
// the domain taxonomy.
type RoomService interface {
	FetchRoom(ctx context.Context, id domain.RoomID, as domain.Identity) (*domain.Room, error)
}

type MessageService interface {
	FetchMessages(ctx context.Context, room domain.RoomID, as domain.Identity) ([]domain.Message, error)
	PostMessage(ctx context.Context, room domain.RoomID, as domain.Identity, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id domain.MessageID, as domain.Identity) error
}

type ParticipantService interface {
	FetchParticipants(ctx context.Context, room domain.RoomID, as domain.Identity) ([]domain.Participant, error)
}

// PanelNotifier is the open panel's push channel back to the client.
// Implementations must tolerate being called from the poll goroutine.
type PanelNotifier interface {
	NotifyMessages(msgs []domain.Message)
	NotifyClosed(reason string)
}

// RoomSession is everything the authorizer needs to decide participation:
// who is asking, whose room it is, and the roster tri-state.
type RoomSession struct {
	Room   domain.Room
	User   *domain.Identity
	Roster domain.Roster
}
