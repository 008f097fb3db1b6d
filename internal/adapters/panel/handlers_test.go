package panel

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkraev/parley/internal/app"
	"github.com/dkraev/parley/internal/domain"
	"github.com/dkraev/parley/internal/geometry"
)

type stubServices struct {
	room     domain.Room
	messages []domain.Message
	postErr  error
}

func (s *stubServices) FetchRoom(ctx context.Context, id domain.RoomID, as domain.Identity) (*domain.Room, error) {
	r := s.room
	return &r, nil
}

func (s *stubServices) FetchMessages(ctx context.Context, room domain.RoomID, as domain.Identity) ([]domain.Message, error) {
	return s.messages, nil
}

func (s *stubServices) PostMessage(ctx context.Context, room domain.RoomID, as domain.Identity, content string) (*domain.Message, error) {
	if s.postErr != nil {
		return nil, s.postErr
	}
	return &domain.Message{ID: "new", Content: content, AuthorEmail: as.Email, CreatedAt: time.Now()}, nil
}

func (s *stubServices) DeleteMessage(ctx context.Context, id domain.MessageID, as domain.Identity) error {
	return nil
}

func (s *stubServices) FetchParticipants(ctx context.Context, room domain.RoomID, as domain.Identity) ([]domain.Participant, error) {
	return []domain.Participant{{Email: "alice@x"}}, nil
}

func newTestController(svc *stubServices) *PanelWSController {
	orch := &app.Orchestrator{
		Registry:     app.NewRegistry(),
		Rooms:        svc,
		Messages:     svc,
		Participants: svc,
		PollInterval: time.Hour,
	}
	return NewPanelWSController(orch,
		geometry.Size{Width: 200, Height: 150},
		geometry.Size{Width: 400, Height: 300},
	)
}

func newTestConn() *panelConn {
	return &panelConn{
		send: make(chan []byte, 32),
		sid:  "s1",
		user: domain.Identity{Email: "alice@x", Role: domain.RoleUser},
	}
}

// drain empties the outbound queue and returns envelopes by type.
func drain(t *testing.T, c *panelConn) []map[string]json.RawMessage {
	t.Helper()
	var out []map[string]json.RawMessage
	for {
		select {
		case b := <-c.send:
			var m map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(b, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func envType(m map[string]json.RawMessage) string {
	var s string
	_ = json.Unmarshal(m["type"], &s)
	return s
}

func lastOfType(t *testing.T, c *panelConn, typ string) map[string]json.RawMessage {
	t.Helper()
	var found map[string]json.RawMessage
	for _, m := range drain(t, c) {
		if envType(m) == typ {
			found = m
		}
	}
	require.NotNil(t, found, "expected a %q envelope", typ)
	return found
}

func openRoom(t *testing.T, ctl *PanelWSController, c *panelConn) {
	t.Helper()
	ctl.handleOpen(context.Background(), c, []byte(`{"type":"open","room":"r1","viewport":{"width":2000,"height":1200}}`))
	require.True(t, c.roomOpen.Load())
	t.Cleanup(func() { ctl.Orch.CloseRoom(c.sid) })
}

func fixtureServices() *stubServices {
	return &stubServices{
		room: domain.Room{ID: "r1", Title: "general", AuthorEmail: "author@x"},
		messages: []domain.Message{
			{ID: "m1", Content: "hi", AuthorEmail: "alice@x", CreatedAt: time.Now()},
		},
	}
}

func TestHandleOpenCentersPanel(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()

	openRoom(t, ctl, c)

	env := lastOfType(t, c, "room_state")
	var rect geometry.Rect
	require.NoError(t, json.Unmarshal(env["rect"], &rect))
	assert.Equal(t, geometry.Rect{X: 800, Y: 450, Width: 400, Height: 300}, rect)
}

func TestHandleOpenRejectsDegenerateViewport(t *testing.T) {
	ctl := newTestController(fixtureServices())

	payloads := []string{
		`{"type":"open","room":"r1"}`,
		`{"type":"open","room":"r1","viewport":{"width":0,"height":800}}`,
		`{"type":"open","room":"r1","viewport":{"width":1200,"height":-5}}`,
	}
	for _, payload := range payloads {
		c := newTestConn()
		ctl.handleOpen(context.Background(), c, []byte(payload))

		lastOfType(t, c, "error")
		assert.False(t, c.roomOpen.Load(), "payload %s must not open a room", payload)
		_, err := ctl.Orch.Snapshot(c.sid)
		assert.ErrorIs(t, err, app.ErrNoOpenRoom)
	}
}

func TestDragSequenceOverWebsocketEnvelopes(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()
	openRoom(t, ctl, c)
	drain(t, c)

	ctl.handlePointerDown(c, []byte(`{"type":"pointer_down","region":"header","x":850,"y":460}`))
	ctl.handlePointerMove(c, []byte(`{"type":"pointer_move","x":950,"y":500}`))

	env := lastOfType(t, c, "geometry")
	var rect geometry.Rect
	require.NoError(t, json.Unmarshal(env["rect"], &rect))
	assert.Equal(t, geometry.Rect{X: 900, Y: 490, Width: 400, Height: 300}, rect)

	ctl.handlePointerUp(c)
	assert.False(t, c.gesture.Captured())
}

func TestResizeReleaseDoesNotCloseOnBackdrop(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()
	openRoom(t, ctl, c)
	drain(t, c)

	ctl.handlePointerDown(c, []byte(`{"type":"pointer_down","region":"handle","edge":"bottom-right","x":1200,"y":750}`))
	ctl.handlePointerMove(c, []byte(`{"type":"pointer_move","x":1260,"y":790}`))
	ctl.handlePointerUp(c)

	// The synthetic backdrop click from the release is swallowed.
	ctl.handleBackdrop(c)
	assert.True(t, c.roomOpen.Load())

	// A genuine second click closes.
	ctl.handleBackdrop(c)
	assert.False(t, c.roomOpen.Load())
	lastOfType(t, c, "closed")
}

func TestViewportShrinkReclampsPanel(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()
	openRoom(t, ctl, c)
	drain(t, c)

	ctl.handleViewport(c, []byte(`{"type":"viewport","width":900,"height":600}`))

	env := lastOfType(t, c, "geometry")
	var rect geometry.Rect
	require.NoError(t, json.Unmarshal(env["rect"], &rect))
	assert.LessOrEqual(t, rect.X+rect.Width, 900.0)
	assert.LessOrEqual(t, rect.Y+rect.Height, 600.0)
}

func TestPostForbiddenSurfacesNoticeWithoutAppend(t *testing.T) {
	svc := fixtureServices()
	svc.postErr = domain.ErrForbidden
	ctl := newTestController(svc)
	c := newTestConn()
	openRoom(t, ctl, c)
	drain(t, c)

	ctl.handlePost(context.Background(), c, []byte(`{"type":"post","content":"hello"}`))

	lastOfType(t, c, "notice")
	snap, err := ctl.Orch.Snapshot(c.sid)
	require.NoError(t, err)
	assert.Len(t, snap, 1, "forbidden post must not be appended locally")
	assert.True(t, c.roomOpen.Load(), "panel stays open on a write denial")
}

func TestPostSuccessPushesMessages(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()
	openRoom(t, ctl, c)
	drain(t, c)

	ctl.handlePost(context.Background(), c, []byte(`{"type":"post","content":"hello"}`))

	env := lastOfType(t, c, "messages")
	var msgs []domain.Message
	require.NoError(t, json.Unmarshal(env["messages"], &msgs))
	assert.Len(t, msgs, 2)
}

func TestNotifyClosedMakesPointerEventsInert(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()
	openRoom(t, ctl, c)
	drain(t, c)

	// The poll cycle decides the room is gone, concurrently with the read
	// pump. Later pointer events must find the panel closed.
	c.NotifyClosed("unauthorized")
	assert.False(t, c.roomOpen.Load())

	ctl.handlePointerDown(c, []byte(`{"type":"pointer_down","region":"header","x":850,"y":460}`))
	ctl.handlePointerMove(c, []byte(`{"type":"pointer_move","x":950,"y":500}`))

	for _, m := range drain(t, c) {
		assert.NotEqual(t, "geometry", envType(m))
	}
}

func TestPointerEventsIgnoredWithoutOpenRoom(t *testing.T) {
	ctl := newTestController(fixtureServices())
	c := newTestConn()

	ctl.handlePointerDown(c, []byte(`{"type":"pointer_down","region":"header","x":10,"y":10}`))
	ctl.handlePointerMove(c, []byte(`{"type":"pointer_move","x":50,"y":50}`))

	for _, m := range drain(t, c) {
		assert.NotEqual(t, "geometry", envType(m))
	}
}
