package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/core"
	"github.com/dkraev/parley/internal/domain"
)

var (
	ErrNoOpenRoom  = errors.New("no open room")
	ErrRateLimited = errors.New("rate limited")
)

// Orchestrator drives the panel flows: open, close, post, delete. It holds
// no per-room state itself; everything lives in the Registry's panels.
type Orchestrator struct {
	Registry     *Registry
	Rooms        core.RoomService
	Messages     core.MessageService
	Participants core.ParticipantService
	Authz        Authorizer
	Deletion     DeletionPolicy
	Limiter      *PostRateLimiter
	PollInterval time.Duration
}

// OpenResult is what the transport renders right after opening a room.
type OpenResult struct {
	Room     domain.Room
	Messages []domain.Message
}

// OpenRoom loads the room, evaluates access, takes the first message fetch
// and starts the poll cycle. Any previously open panel for this session is
// torn down first. The roster fetch failing with Forbidden (or a transient
// error) leaves the roster unknown — it never blocks a possibly-authorized
// user; the backend is the authority on the next write.
func (o *Orchestrator) OpenRoom(
	ctx context.Context,
	sid core.SessionID,
	user domain.Identity,
	roomID domain.RoomID,
	notifier core.PanelNotifier,
) (*OpenResult, error) {
	o.Registry.Unbind(sid)

	room, err := o.Rooms.FetchRoom(ctx, roomID, user)
	if err != nil {
		return nil, err
	}

	roster := domain.UnknownRoster()
	parts, err := o.Participants.FetchParticipants(ctx, roomID, user)
	switch {
	case err == nil:
		roster = domain.KnownRoster(parts)
	case errors.Is(err, domain.ErrUnauthorized):
		return nil, err
	default:
		// Forbidden, NotFound or transient: roster stays unknown.
		log.Debug().Err(err).Str("module", "app.orchestrator").Str("room", string(roomID)).Msg("roster unavailable")
	}

	sess := core.RoomSession{Room: *room, User: &user, Roster: roster}
	if !o.Authz.CanParticipate(sess) {
		return nil, domain.ErrForbidden
	}

	msgs, err := o.Messages.FetchMessages(ctx, roomID, user)
	if err != nil {
		return nil, err
	}

	thread := core.NewThread(msgs)
	poller := NewPoller(o.PollInterval,
		func(ctx context.Context) ([]domain.Message, error) {
			return o.Messages.FetchMessages(ctx, roomID, user)
		},
		thread, notifier,
		func() {
			notifier.NotifyClosed("unauthorized")
			o.Registry.Unbind(sid)
		},
	)

	// Bind before the first cycle can run: a poll that hits a terminal error
	// right away unbinds through the registry, and that only works if the
	// panel is already there.
	o.Registry.Bind(sid, &Panel{
		Room:   *room,
		User:   user,
		Roster: roster,
		Thread: thread,
		Poller: poller,
	})
	poller.Start(ctx)

	return &OpenResult{Room: *room, Messages: thread.Snapshot()}, nil
}

// CloseRoom stops the poll cycle and releases the panel.
func (o *Orchestrator) CloseRoom(sid core.SessionID) {
	o.Registry.Unbind(sid)
}

// PostMessage re-evaluates participation, applies the rate limit, posts to
// the backend and appends the confirmed message. Nothing is appended on
// failure: a Forbidden answer means our local decision was stale.
func (o *Orchestrator) PostMessage(ctx context.Context, sid core.SessionID, content string) (*domain.Message, error) {
	panel, ok := o.Registry.Get(sid)
	if !ok {
		return nil, ErrNoOpenRoom
	}

	draft, err := domain.NewDraft(content)
	if err != nil {
		return nil, err
	}

	sess := core.RoomSession{Room: panel.Room, User: &panel.User, Roster: panel.Roster}
	if !o.Authz.CanParticipate(sess) {
		return nil, domain.ErrForbidden
	}

	if o.Limiter != nil && !o.Limiter.Allow(panel.User.Email) {
		return nil, ErrRateLimited
	}

	msg, err := o.Messages.PostMessage(ctx, panel.Room.ID, panel.User, draft)
	if err != nil {
		return nil, err
	}
	panel.Thread.Append(*msg)
	return msg, nil
}

// DeleteMessage checks the deletion policy locally, then asks the backend.
// A NotFound answer means the list is stale: refresh it immediately instead
// of waiting for the next poll.
func (o *Orchestrator) DeleteMessage(ctx context.Context, sid core.SessionID, id domain.MessageID) error {
	panel, ok := o.Registry.Get(sid)
	if !ok {
		return ErrNoOpenRoom
	}

	all := panel.Thread.Snapshot()
	var target *domain.Message
	for i := range all {
		if all[i].ID == id {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return domain.ErrNotFound
	}

	if !o.Deletion.CanDelete(*target, all, &panel.User) {
		return domain.ErrForbidden
	}

	if err := o.Messages.DeleteMessage(ctx, id, panel.User); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			o.refresh(ctx, panel)
		}
		return err
	}
	panel.Thread.Remove(id)
	return nil
}

// Snapshot returns the current thread state of the open panel.
func (o *Orchestrator) Snapshot(sid core.SessionID) ([]domain.Message, error) {
	panel, ok := o.Registry.Get(sid)
	if !ok {
		return nil, ErrNoOpenRoom
	}
	return panel.Thread.Snapshot(), nil
}

func (o *Orchestrator) refresh(ctx context.Context, panel *Panel) {
	msgs, err := o.Messages.FetchMessages(ctx, panel.Room.ID, panel.User)
	if err != nil {
		log.Debug().Err(err).Str("module", "app.orchestrator").Str("room", string(panel.Room.ID)).Msg("refresh after delete failed")
		return
	}
	panel.Thread.Reconcile(msgs)
}
