package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkraev/parley/internal/core"
	"github.com/dkraev/parley/internal/domain"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages [][]domain.Message
	closed   []string
}

func (n *recordingNotifier) NotifyMessages(msgs []domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msgs)
}

func (n *recordingNotifier) NotifyClosed(reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, reason)
}

func (n *recordingNotifier) notifyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func (n *recordingNotifier) closedReasons() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.closed))
	copy(out, n.closed)
	return out
}

func msgs(ids ...string) []domain.Message {
	out := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Message{ID: domain.MessageID(id), CreatedAt: time.Now()})
	}
	return out
}

func TestPollerReplacesOnCountChange(t *testing.T) {
	t.Parallel()

	thread := core.NewThread(msgs("1"))
	notifier := &recordingNotifier{}
	fetch := func(ctx context.Context) ([]domain.Message, error) {
		return msgs("1", "2"), nil
	}

	p := StartPoller(context.Background(), 5*time.Millisecond, fetch, thread, notifier, func() {})
	defer p.Stop()

	assert.Eventually(t, func() bool { return thread.Len() == 2 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return notifier.notifyCount() >= 1 }, time.Second, time.Millisecond)
}

func TestPollerIdempotentWhenCountUnchanged(t *testing.T) {
	t.Parallel()

	thread := core.NewThread(msgs("1", "2"))
	notifier := &recordingNotifier{}

	var fetches sync.WaitGroup
	fetches.Add(3)
	calls := 0
	var mu sync.Mutex
	fetch := func(ctx context.Context) ([]domain.Message, error) {
		mu.Lock()
		calls++
		if calls <= 3 {
			defer fetches.Done()
		}
		mu.Unlock()
		return msgs("a", "b"), nil // same count, different content
	}

	p := StartPoller(context.Background(), 5*time.Millisecond, fetch, thread, notifier, func() {})
	fetches.Wait()
	p.Stop()

	// N unchanged-count polls leave local state exactly as it was.
	snap := thread.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, domain.MessageID("1"), snap[0].ID)
	assert.Equal(t, 0, notifier.notifyCount())
}

func TestPollerSwallowsNetworkErrors(t *testing.T) {
	t.Parallel()

	thread := core.NewThread(nil)
	notifier := &recordingNotifier{}

	var mu sync.Mutex
	calls := 0
	fetch := func(ctx context.Context) ([]domain.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return nil, &domain.NetworkError{Err: context.DeadlineExceeded}
		}
		return msgs("1"), nil
	}

	p := StartPoller(context.Background(), 5*time.Millisecond, fetch, thread, notifier, func() {})
	defer p.Stop()

	// The failures are invisible; the retrying cycle eventually lands.
	assert.Eventually(t, func() bool { return thread.Len() == 1 }, time.Second, time.Millisecond)
}

func TestPollerHaltsOnUnauthorized(t *testing.T) {
	t.Parallel()

	thread := core.NewThread(nil)
	notifier := &recordingNotifier{}

	var mu sync.Mutex
	unauthorized := 0
	fetch := func(ctx context.Context) ([]domain.Message, error) {
		return nil, domain.ErrUnauthorized
	}

	p := StartPoller(context.Background(), 5*time.Millisecond, fetch, thread, notifier, func() {
		mu.Lock()
		unauthorized++
		mu.Unlock()
	})
	defer p.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return unauthorized == 1
	}, time.Second, time.Millisecond)

	// Give it a few would-be cycles: the callback fires exactly once.
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, unauthorized)
}

func TestPollerNeverWritesAfterStop(t *testing.T) {
	t.Parallel()

	// The teardown race from the scenario list: room A's fetch is in flight
	// when the panel switches to room B. When A's fetch finally resolves it
	// must not touch anything.
	threadA := core.NewThread(nil)
	notifierA := &recordingNotifier{}

	started := make(chan struct{})
	release := make(chan struct{})
	fetchA := func(ctx context.Context) ([]domain.Message, error) {
		close(started)
		<-release
		return msgs("stale-1", "stale-2"), nil
	}

	pA := StartPoller(context.Background(), time.Hour, fetchA, threadA, notifierA, func() {})
	<-started
	pA.Stop()

	// Room B is already live by the time A's fetch resolves.
	threadB := core.NewThread(nil)
	notifierB := &recordingNotifier{}
	pB := StartPoller(context.Background(), time.Hour, func(ctx context.Context) ([]domain.Message, error) {
		return msgs("b-1"), nil
	}, threadB, notifierB, func() {})
	defer pB.Stop()

	close(release)
	assert.Eventually(t, func() bool { return threadB.Len() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, 0, threadA.Len(), "stale cycle must not write after Stop")
	assert.Equal(t, 0, notifierA.notifyCount())
	assert.Equal(t, domain.MessageID("b-1"), threadB.Snapshot()[0].ID)
}

func TestPollerStoppedBeforeStartStaysStopped(t *testing.T) {
	t.Parallel()

	fetched := make(chan struct{}, 1)
	p := NewPoller(time.Hour, func(ctx context.Context) ([]domain.Message, error) {
		fetched <- struct{}{}
		return nil, nil
	}, core.NewThread(nil), &recordingNotifier{}, func() {})

	p.Stop()
	p.Start(context.Background())

	select {
	case <-fetched:
		t.Fatal("stopped poller must not fetch")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	p := StartPoller(context.Background(), time.Hour, func(ctx context.Context) ([]domain.Message, error) {
		return nil, nil
	}, core.NewThread(nil), &recordingNotifier{}, func() {})

	p.Stop()
	p.Stop()
}
